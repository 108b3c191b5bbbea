package services

import (
	"context"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// UserSvcFacade exposes identity-level operations used by the auth flows.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, email, password string) (*domain.User, error)
	CreateOAuthUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
	StoreRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiry time.Time) error
	ClearRefreshToken(ctx context.Context, userID string) error
	SetPassword(ctx context.Context, userID, password string) error
}
