package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/modules/auth/entity"
)

type AuthRepositoryInterface interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
}

type AuthRepository struct {
	DB database.Database
}

func NewAuthRepository(db database.Database) *AuthRepository {
	return &AuthRepository{DB: db}
}

const userColumns = `id, email, name, password, google_id, email_verified_at, is_active, created_at, updated_at`

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`

	var user entity.User
	err := r.DB.GetContext(ctx, &user, query, strings.ToLower(email))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("AuthRepository:GetUserByEmail", "error", err)
		return nil, err
	}
	return &user, nil
}

func (r *AuthRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `
		INSERT INTO users (email, name, password, google_id, email_verified_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	user.Email = strings.ToLower(user.Email)
	err := r.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.Password, user.GoogleID, user.EmailVerifiedAt, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		logger.Error("AuthRepository:CreateUser", "error", err)
		return nil, err
	}
	return user, nil
}

func (r *AuthRepository) UpdateUser(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $1, password = $2, google_id = $3, email_verified_at = $4, updated_at = NOW()
		WHERE id = $5
	`
	if err := r.DB.ExecContext(ctx, query,
		user.Name, user.Password, user.GoogleID, user.EmailVerifiedAt, user.ID,
	); err != nil {
		logger.Error("AuthRepository:UpdateUser", "error", err)
		return err
	}
	return nil
}
