package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atelierhq/order_tracking_app/internal/apperrors"
	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
	"github.com/atelierhq/order_tracking_app/internal/middleware"
	"github.com/atelierhq/order_tracking_app/internal/utils"
)

// AuthService owns the session lifecycle. Sign-up delegates the post-identity
// setup sequence to the profile service; sign-in, refresh and sign-out manage
// tokens through the token service.
type AuthService struct {
	userService    portssvc.UserSvcFacade
	profileService portssvc.ProfileSvcFacade
	tokenService   portssvc.TokenSvcFacade
}

// NewAuthService creates a new AuthService.
func NewAuthService(userService portssvc.UserSvcFacade, profileService portssvc.ProfileSvcFacade, tokenService portssvc.TokenSvcFacade) portssvc.AuthSvcFacade {
	return &AuthService{
		userService:    userService,
		profileService: profileService,
		tokenService:   tokenService,
	}
}

var _ portssvc.AuthSvcFacade = (*AuthService)(nil)

// SignUp creates the identity and runs the setup sequence. If any setup step
// fails after the identity exists, the account is left in its recorded stage
// and the user is still returned alongside the error: the caller can sign in
// and repair.
func (s *AuthService) SignUp(ctx context.Context, email, password string, metadata domain.SignupMetadata) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userService.CreateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// The database trigger creates the minimal profile row when the identity
	// is inserted; wait for it rather than assuming timing.
	if _, err := s.profileService.WaitForProfile(ctx, user.UserID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return user, err
		}
		// Trigger row never appeared; create it directly.
		if _, err := s.profileService.RepairProfile(ctx, user.UserID); err != nil {
			logger.Error("Failed to create profile row after signup", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
			return user, err
		}
	}

	if err := s.profileService.CompleteProfileSetup(ctx, user, metadata); err != nil {
		logger.Warn("Signup setup incomplete, account left degraded",
			slog.String("error", err.Error()),
			slog.String("user_id", user.UserID))
		return user, err
	}

	logger.Info("Signup completed", slog.String("user_id", user.UserID))
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*portssvc.Session, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user for sign-in: %w", err)
	}
	if user.DisabledAt != nil {
		logger.Warn("Sign-in attempt for disabled account", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}
	if user.AuthProvider != domain.ProviderLocal || user.PasswordHash == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Info("User signed in", slog.String("user_id", user.UserID))
	return session, nil
}

// SignOut clears the stored refresh token. Signing out an already-signed-out
// or unknown session is success.
func (s *AuthService) SignOut(ctx context.Context, userID string) error {
	if err := s.userService.ClearRefreshToken(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Refresh rotates the refresh token: the presented token is validated against
// the stored hash, then replaced by a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, userID, refreshToken string) (*portssvc.Session, error) {
	user, err := s.tokenService.ValidateAndParseRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// ResetPassword issues a reset token for the account if one exists. The
// result is identical either way so callers cannot probe for accounts.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	// No mailer is wired; the token is surfaced to operators through the log
	// until delivery exists.
	logger.Info("Password reset requested",
		slog.String("user_id", user.UserID),
		slog.String("reset_token", resetToken))
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*portssvc.Session, error) {
	accessToken, accessExpiry, err := s.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.tokenService.GenerateRefreshToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.userService.StoreRefreshToken(ctx, user.UserID, utils.HashRefreshToken(refreshToken), refreshExpiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &portssvc.Session{
		User:               user,
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}
