package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"meetsync/core/config"
	"meetsync/core/errors"
	"meetsync/modules/auth/dto"
	"meetsync/modules/auth/entity"
)

type fakeAuthRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]*entity.User{}}
}

func (f *fakeAuthRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, user *entity.User) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[strings.ToLower(user.Email)] = user
	return user, nil
}

func (f *fakeAuthRepo) UpdateUser(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(user.Email)] = user
	return nil
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]any
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]any{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return false, nil
	}
	if b, ok := dest.(*bool); ok {
		*b = true
	}
	return true, nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func (f *fakeCache) Client() *redis.Client { return nil }

func setupAuthConfig(t *testing.T) {
	t.Helper()
	config.SetForTesting(&config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 60},
		GoogleAPI: config.GoogleAPIConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURI:  "http://localhost:7070/auth/google/callback",
		},
	})
}

func TestRegister_IssuesTokenAndStoresHashedPassword(t *testing.T) {
	setupAuthConfig(t)
	repo := newFakeAuthRepo()
	svc := NewAuthService(repo, newFakeCache(), nil)

	resp, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "Ann@Example.com",
		Name:     "Ann",
		Password: "s3cret-pass",
	})
	if appErr != nil {
		t.Fatalf("Register failed: %v", appErr)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if resp.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", resp.TokenType)
	}
	if resp.User.Email != "ann@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}

	stored := repo.users["ann@example.com"]
	if stored == nil {
		t.Fatal("user was not persisted")
	}
	if stored.Password == "s3cret-pass" {
		t.Fatal("password was stored in plain text")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	setupAuthConfig(t)
	svc := NewAuthService(newFakeAuthRepo(), newFakeCache(), nil)

	if _, appErr := svc.Register(context.Background(), &dto.RegisterRequest{Email: "ann@example.com", Name: "Ann", Password: "s3cret-pass"}); appErr != nil {
		t.Fatalf("first Register failed: %v", appErr)
	}

	_, appErr := svc.Register(context.Background(), &dto.RegisterRequest{Email: "ANN@example.com", Name: "Ann", Password: "other-pass"})
	if appErr == nil || appErr.Code != errors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", appErr)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	setupAuthConfig(t)
	svc := NewAuthService(newFakeAuthRepo(), newFakeCache(), nil)

	if _, appErr := svc.Register(context.Background(), &dto.RegisterRequest{Email: "ann@example.com", Name: "Ann", Password: "s3cret-pass"}); appErr != nil {
		t.Fatalf("Register failed: %v", appErr)
	}

	_, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "ann@example.com", Password: "wrong"})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", appErr)
	}

	resp, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"})
	if appErr != nil {
		t.Fatalf("Login with correct password failed: %v", appErr)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected an access token")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	setupAuthConfig(t)
	svc := NewAuthService(newFakeAuthRepo(), newFakeCache(), nil)

	_, appErr := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", appErr)
	}
}

func TestGetGoogleAuthURL_StoresStateForCallback(t *testing.T) {
	setupAuthConfig(t)
	c := newFakeCache()
	svc := NewAuthService(newFakeAuthRepo(), c, nil)

	resp, appErr := svc.GetGoogleAuthURL(context.Background())
	if appErr != nil {
		t.Fatalf("GetGoogleAuthURL failed: %v", appErr)
	}
	if resp.State == "" {
		t.Fatal("expected a state value")
	}
	if !strings.Contains(resp.URL, "state="+resp.State) {
		t.Fatalf("consent URL missing state: %s", resp.URL)
	}
	if !strings.Contains(resp.URL, "client-id") {
		t.Fatalf("consent URL missing client id: %s", resp.URL)
	}

	c.mu.Lock()
	_, stored := c.values["oauth_state:"+resp.State]
	c.mu.Unlock()
	if !stored {
		t.Fatal("state was not cached for the callback")
	}
}

func TestHandleGoogleCallback_RejectsUnknownState(t *testing.T) {
	setupAuthConfig(t)
	svc := NewAuthService(newFakeAuthRepo(), newFakeCache(), nil)

	_, appErr := svc.HandleGoogleCallback(context.Background(), &dto.GoogleCallbackRequest{
		Code:  "some-code",
		State: "never-issued",
	})
	if appErr == nil || appErr.Code != errors.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", appErr)
	}
}
