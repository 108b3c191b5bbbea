package services

import (
	"context"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// CompanySvcFacade manages the tenant: company record, members and
// invitations. Manager-only operations authorize via the caller's profile.
type CompanySvcFacade interface {
	CreateCompany(ctx context.Context, name, creatorUserID string) (*domain.Company, error)
	GetCompany(ctx context.Context, companyID, callerID string) (*domain.Company, error)
	ListMembers(ctx context.Context, companyID, callerID string) ([]domain.Profile, error)
	// RemoveMember detaches a worker from the company and deletes their
	// assignment rows. Manager only; managers cannot remove themselves.
	RemoveMember(ctx context.Context, companyID, callerID, workerID string) error

	CreateInvitation(ctx context.Context, companyID, callerID, email string, role domain.Role) (*domain.Invitation, error)
	ListInvitations(ctx context.Context, companyID, callerID string) ([]domain.Invitation, error)
	DeleteInvitation(ctx context.Context, companyID, callerID, code string) error
}
