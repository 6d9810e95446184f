package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/pkg/database"
)

// UserRepository handles User database operations.
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	ex := execFrom(ctx, r.db)

	user.CreatedAt = time.Now()
	_, err := ex.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, password_hash, reset_requested, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.Role, user.PasswordHash,
		user.ResetRequested, user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, `SELECT id, name, email, role, password_hash, reset_requested, created_at
		FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, `SELECT id, name, email, role, password_hash, reset_requested, created_at
		FROM users WHERE email = ?`, email)
}

// SetResetRequested flags or clears the pending password reset on an
// account. A flagged account cannot log in until an administrator resolves
// the reset.
func (r *UserRepository) SetResetRequested(ctx context.Context, id string, requested bool) error {
	ex := execFrom(ctx, r.db)

	res, err := ex.ExecContext(ctx,
		`UPDATE users SET reset_requested = ? WHERE id = ?`, requested, id)
	if err != nil {
		r.logger.Error("Failed to set reset flag", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("failed to set reset flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*entity.User, error) {
	ex := execFrom(ctx, r.db)

	var user entity.User
	err := ex.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role,
		&user.PasswordHash, &user.ResetRequested, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
