package repositories

import (
	"context"
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// UserRepository persists authentication identities.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiry time.Time) error
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error
}

// ProfileRepository persists application-level profiles.
type ProfileRepository interface {
	FindProfileByID(ctx context.Context, profileID string) (*domain.Profile, error)
	// EnsureProfile creates a minimal profile row if none exists. Idempotent.
	EnsureProfile(ctx context.Context, profile domain.Profile) error
	UpdateProfileFields(ctx context.Context, profileID, fullName, email string, role domain.Role, stage domain.SetupStage, updatedBy string) error
	SetCompany(ctx context.Context, profileID, companyID string, stage domain.SetupStage, updatedBy string) error
	DetachFromCompany(ctx context.Context, profileID, companyID string, updatedBy string) error
	ListProfilesByCompany(ctx context.Context, companyID string) ([]domain.Profile, error)
}

// CompanyRepository persists companies.
type CompanyRepository interface {
	SaveCompany(ctx context.Context, company domain.Company) error
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}

// InvitationRepository persists invitations. Consume marks the code used and
// resolves the company atomically with the profile update.
type InvitationRepository interface {
	SaveInvitation(ctx context.Context, inv domain.Invitation) error
	ListInvitationsByCompany(ctx context.Context, companyID string) ([]domain.Invitation, error)
	DeleteInvitation(ctx context.Context, code, companyID string) error
	// ConsumeInvitation marks the unused invitation identified by code as
	// used and sets the profile's company in one transaction. Returns the
	// resolved invitation or ErrNotFound for unknown/spent codes.
	ConsumeInvitation(ctx context.Context, code, profileID string) (*domain.Invitation, error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	SaveOrder(ctx context.Context, order domain.Order) error
	// ListOrdersByCompany returns company orders with their assignment rows,
	// created_at descending, optionally starting after the cursor time.
	ListOrdersByCompany(ctx context.Context, companyID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error)
	// ListOrdersVisibleToWorker returns the union of orders assigned to the
	// worker and general orders of the company, created_at descending.
	ListOrdersVisibleToWorker(ctx context.Context, companyID, workerID string, limit int, before *time.Time) ([]domain.OrderWithAssignments, error)
	FindOrderByID(ctx context.Context, orderID, companyID string) (*domain.OrderWithAssignments, error)
	// UpdateOrder updates mutable fields, scoped by company. ErrNotFound
	// when the predicate matches zero rows.
	UpdateOrder(ctx context.Context, order domain.Order) error
	// DeleteOrder removes the order's assignments then the order, in one
	// transaction.
	DeleteOrder(ctx context.Context, orderID, companyID string) error
}

// AssignmentRepository persists order assignments.
type AssignmentRepository interface {
	// ReplaceAssignments deletes all assignment rows for the order and
	// inserts fresh rows for workerIDs, flags reset, in one transaction.
	ReplaceAssignments(ctx context.Context, orderID string, assignments []domain.OrderAssignment) error
	ListAssignmentsByWorker(ctx context.Context, workerID string) ([]domain.OrderAssignment, error)
	// SetStarred flips the flag on the worker's own assignment row.
	// ErrNotFound when no row matches (not found or not permitted).
	SetStarred(ctx context.Context, assignmentID, workerID string, starred bool) error
	// UpsertMarkedDone sets marked_done on the (order, worker) row, creating
	// it on demand for general orders. Unique (order_id, worker_id) makes
	// repeated toggles safe.
	UpsertMarkedDone(ctx context.Context, orderID, workerID string, done bool) error
	DeleteAssignmentsByWorker(ctx context.Context, workerID, companyID string) error
}

// BuyListRepository persists shared shopping-list items.
type BuyListRepository interface {
	SaveItem(ctx context.Context, item domain.BuyListItem) error
	ListItemsByCompany(ctx context.Context, companyID string) ([]domain.BuyListItem, error)
	FindItemByID(ctx context.Context, itemID, companyID string) (*domain.BuyListItem, error)
	UpdateItem(ctx context.Context, item domain.BuyListItem) error
	SetStatus(ctx context.Context, itemID, companyID string, status domain.BuyStatus, updatedBy string) error
	DeleteItem(ctx context.Context, itemID, companyID string) error
}

// RepositoryProvider bundles all repositories for wiring.
type RepositoryProvider struct {
	UserRepo       UserRepository
	ProfileRepo    ProfileRepository
	CompanyRepo    CompanyRepository
	InvitationRepo InvitationRepository
	OrderRepo      OrderRepository
	AssignmentRepo AssignmentRepository
	BuyListRepo    BuyListRepository
}
