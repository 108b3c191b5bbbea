package services

import (
	"context"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// Session is the result of a successful sign-in: the identity plus issued
// tokens.
type Session struct {
	User               *domain.User
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthSvcFacade owns the session lifecycle: sign-up, sign-in, sign-out,
// refresh and password reset. Every failure is mapped to an apperrors
// sentinel; nothing propagates raw.
type AuthSvcFacade interface {
	// SignUp runs the multi-step signup sequence. A non-nil error from the
	// company-resolution step still leaves a usable (degraded) account; the
	// returned user is non-nil in that case.
	SignUp(ctx context.Context, email, password string, metadata domain.SignupMetadata) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// SignOut clears the stored refresh token. Idempotent: an already-signed-
	// out or unknown session is success.
	SignOut(ctx context.Context, userID string) error
	Refresh(ctx context.Context, userID, refreshToken string) (*Session, error)
	// ResetPassword issues a reset token for the account, if one exists.
	// Always succeeds from the caller's view to avoid account enumeration.
	ResetPassword(ctx context.Context, email string) error
}

// TokenSvcFacade issues and validates tokens.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	ValidateAndParseRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.User, error)
}

// GoogleOAuthSvcFacade wraps the Google sign-in flow.
type GoogleOAuthSvcFacade interface {
	GenerateStateString(ctx context.Context) (string, error)
	GetGoogleLoginURL(ctx context.Context, state string) string
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
	// ValidateGoogleIDToken verifies an ID token issued for this app's client
	// ID and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
