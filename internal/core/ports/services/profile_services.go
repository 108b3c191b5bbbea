package services

import (
	"context"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// SessionOverview is the gate state reported to clients so they can drive
// their render guard.
type SessionOverview struct {
	State        domain.SessionState
	Profile      *domain.Profile
	Capabilities domain.Capabilities
}

// ProfileSvcFacade resolves and repairs profiles for authenticated
// identities.
type ProfileSvcFacade interface {
	FetchProfile(ctx context.Context, profileID string) (*domain.Profile, error)
	// WaitForProfile polls for the trigger-created profile row with bounded
	// backoff instead of a fixed settling sleep.
	WaitForProfile(ctx context.Context, profileID string) (*domain.Profile, error)
	// RepairProfile idempotently creates a minimal profile row and re-runs
	// any unfinished setup step recorded in setup_stage.
	RepairProfile(ctx context.Context, userID string) (*domain.Profile, error)
	// CompleteProfileSetup runs the non-transactional post-signup sequence:
	// update profile fields, then resolve the company (create or join).
	CompleteProfileSetup(ctx context.Context, user *domain.User, metadata domain.SignupMetadata) error
	UpdateProfile(ctx context.Context, profileID, fullName string) (*domain.Profile, error)
	// SessionState derives the gate state for an authenticated identity.
	SessionState(ctx context.Context, userID string) (*SessionOverview, error)
}
