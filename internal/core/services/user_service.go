package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portsrepo "github.com/atelierhq/order_tracking_app/internal/core/ports/repositories"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/utils"
	"github.com/google/uuid"
)

// UserService handles identity-level operations used by the auth flows.
type UserService struct {
	userRepo portsrepo.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository) portssvc.UserSvcFacade {
	return &UserService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*UserService)(nil)

// CreateUser creates a local-provider identity with a bcrypt password hash.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		AuthProvider: domain.ProviderLocal,
		CreatedAt:    now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()), slog.String("email", email))
		return nil, err
	}

	logger.Info("User created", slog.String("user_id", user.UserID))
	return &user, nil
}

// CreateOAuthUser creates an identity backed by an external provider. No
// password is stored.
func (s *UserService) CreateOAuthUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	providerUserID := info.ProviderUserID
	user := domain.User{
		UserID:         uuid.NewString(),
		Email:          strings.ToLower(info.Email),
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: &providerUserID,
		CreatedAt:      now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save oauth user", slog.String("error", err.Error()), slog.String("provider_user_id", info.ProviderUserID))
		return nil, err
	}

	logger.Info("OAuth user created", slog.String("user_id", user.UserID), slog.String("provider", string(domain.ProviderGoogle)))
	return &user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) GetUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	return s.userRepo.FindUserByProviderDetails(ctx, provider, providerUserID)
}

func (s *UserService) StoreRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiry time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, expiry)
}

// ClearRefreshToken invalidates the stored refresh token. Clearing an
// already-clear token is success.
func (s *UserService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

func (s *UserService) SetPassword(ctx context.Context, userID, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePasswordHash(ctx, userID, passwordHash)
}
