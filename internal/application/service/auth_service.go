package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"

	"github.com/citimr/aid-portal/internal/application/port"
	"github.com/citimr/aid-portal/internal/auth"
	"github.com/citimr/aid-portal/internal/domain/entity"
	"github.com/citimr/aid-portal/internal/repository"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrWeakPassword         = errors.New("password does not meet the minimum length")
	ErrPasswordResetPending = errors.New("password reset pending, contact an administrator")
	ErrInvalidAccessCode    = errors.New("invalid access code")
)

// AdminUserID is the synthetic identity carried by access-code sessions.
// Administrators share one gate; there is no per-admin account.
const AdminUserID = "admin"

// AuthService handles accounts and session tokens.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
	AdminAccess(ctx context.Context, accessCode string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
}

type authServiceImpl struct {
	userRepo        port.UserRepository
	issuer          *auth.TokenIssuer
	adminAccessCode string
	logger          Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo port.UserRepository, issuer *auth.TokenIssuer, adminAccessCode string, logger Logger) AuthService {
	return &authServiceImpl{
		userRepo:        userRepo,
		issuer:          issuer,
		adminAccessCode: adminAccessCode,
		logger:          logger,
	}
}

// Register creates an employee account.
func (s *authServiceImpl) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	if !auth.ValidPassword(password) {
		return nil, ErrWeakPassword
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         entity.RoleEmployee,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("Failed to register user", "error", err, "email", email)
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login authenticates an employee and returns a session token. An account
// with a pending password reset cannot log in.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.ResetRequested {
		return "", nil, ErrPasswordResetPending
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Name, user.Role)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return token, user, nil
}

// AdminAccess exchanges the shared access code for an administrator token.
func (s *authServiceImpl) AdminAccess(_ context.Context, accessCode string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(accessCode), []byte(s.adminAccessCode)) != 1 {
		s.logger.Error("Admin access denied")
		return "", ErrInvalidAccessCode
	}

	token, err := s.issuer.Issue(AdminUserID, "Administração", entity.RoleAdmin)
	if err != nil {
		return "", err
	}

	s.logger.Info("Admin session issued")
	return token, nil
}

// RequestPasswordReset flags the account for a manual reset. An unknown
// email succeeds silently so the endpoint does not leak registered
// addresses.
func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if err := s.userRepo.SetResetRequested(ctx, user.ID, true); err != nil {
		s.logger.Error("Failed to flag password reset", "error", err, "user_id", user.ID)
		return err
	}

	s.logger.Info("Password reset requested", "user_id", user.ID)
	return nil
}
