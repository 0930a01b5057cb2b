package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"meetsync/core/cache"
	"meetsync/core/config"
	"meetsync/core/constants"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/core/utils"
	"meetsync/modules/auth/dto"
	"meetsync/modules/auth/entity"
	"meetsync/modules/auth/repository"
	calendarService "meetsync/modules/calendar/service"
)

const googleUserInfoAPI = "https://www.googleapis.com/oauth2/v2/userinfo"

var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar.freebusy",
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError)
	GetGoogleAuthURL(ctx context.Context) (*dto.GoogleAuthURLResponse, *errors.AppError)
	HandleGoogleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.AuthResponse, *errors.AppError)
}

type AuthService struct {
	repo     repository.AuthRepositoryInterface
	cache    cache.Cache
	calendar calendarService.CalendarService
}

func NewAuthService(repo repository.AuthRepositoryInterface, c cache.Cache, calendar calendarService.CalendarService) AuthServiceInterface {
	return &AuthService{
		repo:     repo,
		cache:    c,
		calendar: calendar,
	}
}

// Register creates an account and issues an access token.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, *errors.AppError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to check existing user", err)
	}
	if existing != nil {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email is already registered", nil)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to hash password", err)
	}

	user := &entity.User{
		Email:    email,
		Name:     req.Name,
		Password: hash,
		IsActive: true,
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create user", err)
	}

	return s.issueToken(created)
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, *errors.AppError) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up user", err)
	}
	if user == nil || user.Password == "" || !utils.ComparePassword(user.Password, req.Password) {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid email or password", nil)
	}

	return s.issueToken(user)
}

// GetGoogleAuthURL builds the consent URL. The state is cached so the
// callback can reject forged exchanges.
func (s *AuthService) GetGoogleAuthURL(ctx context.Context) (*dto.GoogleAuthURLResponse, *errors.AppError) {
	oauthCfg, appErr := s.googleConfig()
	if appErr != nil {
		return nil, appErr
	}

	state := utils.GenerateInvitationToken()
	if s.cache != nil {
		if err := s.cache.Set(ctx, constants.RedisKeyOAuthState+state, true, constants.OAuthStateTTL); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to store OAuth state", err)
		}
	}

	url := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return &dto.GoogleAuthURLResponse{URL: url, State: state}, nil
}

// HandleGoogleCallback exchanges the authorization code, provisions the user
// and stores the calendar connection for free/busy lookups.
func (s *AuthService) HandleGoogleCallback(ctx context.Context, req *dto.GoogleCallbackRequest) (*dto.AuthResponse, *errors.AppError) {
	if s.cache != nil {
		var seen bool
		hit, err := s.cache.Get(ctx, constants.RedisKeyOAuthState+req.State, &seen)
		if err != nil || !hit {
			return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid or expired OAuth state", err)
		}
		if err := s.cache.Delete(ctx, constants.RedisKeyOAuthState+req.State); err != nil {
			logger.Warn("AuthService:HandleGoogleCallback:DeleteState", "error", err)
		}
	}

	oauthCfg, appErr := s.googleConfig()
	if appErr != nil {
		return nil, appErr
	}

	token, err := oauthCfg.Exchange(ctx, req.Code)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:Exchange", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Failed to exchange authorization code", err)
	}

	info, err := fetchGoogleUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to fetch Google profile", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, info.Email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to look up user", err)
	}

	now := time.Now()
	if user == nil {
		user = &entity.User{
			Email:           strings.ToLower(info.Email),
			Name:            info.Name,
			GoogleID:        &info.ID,
			EmailVerifiedAt: &now,
			IsActive:        true,
		}
		if user, err = s.repo.CreateUser(ctx, user); err != nil {
			return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create user", err)
		}
	} else if user.GoogleID == nil {
		user.GoogleID = &info.ID
		if user.EmailVerifiedAt == nil {
			user.EmailVerifiedAt = &now
		}
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			logger.Error("AuthService:HandleGoogleCallback:LinkGoogle", "error", err)
		}
	}

	if s.calendar != nil {
		if _, appErr := s.calendar.SaveGoogleConnection(ctx, user.Email,
			token.AccessToken, token.RefreshToken, token.Expiry, info.Email); appErr != nil {
			logger.Error("AuthService:HandleGoogleCallback:SaveConnection", "error", appErr)
		}
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *entity.User) (*dto.AuthResponse, *errors.AppError) {
	token, err := utils.GenerateToken(user.ID, user.Email, constants.ScopeTokenAccess)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to issue token", err)
	}

	expiryMinutes := 60
	if cfg, ok := config.GetSafe(); ok && cfg.JWT.ExpiryMinutes > 0 {
		expiryMinutes = cfg.JWT.ExpiryMinutes
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
		User: dto.UserResponse{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		},
	}, nil
}

func (s *AuthService) googleConfig() (*oauth2.Config, *errors.AppError) {
	cfg, ok := config.GetSafe()
	if !ok {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Configuration not loaded", nil)
	}
	if cfg.GoogleAPI.ClientID == "" || cfg.GoogleAPI.ClientSecret == "" {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Google OAuth is not configured", nil)
	}

	return &oauth2.Config{
		ClientID:     cfg.GoogleAPI.ClientID,
		ClientSecret: cfg.GoogleAPI.ClientSecret,
		RedirectURL:  cfg.GoogleAPI.RedirectURI,
		Scopes:       googleScopes,
		Endpoint:     google.Endpoint,
	}, nil
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchGoogleUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoAPI, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: constants.DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google userinfo api error: %s", string(body))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google userinfo response missing email")
	}
	return &info, nil
}
