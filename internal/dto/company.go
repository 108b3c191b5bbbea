package dto

import (
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// --- Company DTOs ---

// CreateCompanyRequest defines data for creating a company outside signup,
// used by the repair flow when company creation failed mid-setup.
type CreateCompanyRequest struct {
	Name string `json:"name" binding:"required"`
}

// CompanyResponse defines data returned for a company.
type CompanyResponse struct {
	CompanyID string    `json:"companyID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// ToCompanyResponse converts domain.Company to DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID: c.CompanyID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		CreatedBy: c.CreatedBy,
	}
}

// --- Invitation DTOs ---

// CreateInvitationRequest defines data for inviting a member.
type CreateInvitationRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Role  domain.Role `json:"role" binding:"required,oneof=worker manager"`
}

// InvitationResponse defines data returned for an invitation.
type InvitationResponse struct {
	Code      string      `json:"code"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CompanyID string      `json:"companyID"`
	InvitedBy string      `json:"invitedBy"`
	IsUsed    bool        `json:"isUsed"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ToInvitationResponse converts domain.Invitation to DTO.
func ToInvitationResponse(inv *domain.Invitation) InvitationResponse {
	return InvitationResponse{
		Code:      inv.Code,
		Email:     inv.Email,
		Role:      inv.Role,
		CompanyID: inv.CompanyID,
		InvitedBy: inv.InvitedBy,
		IsUsed:    inv.IsUsed,
		CreatedAt: inv.CreatedAt,
	}
}

// ListInvitationsResponse wraps a list of invitations.
type ListInvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

// ToListInvitationsResponse converts a slice of domain.Invitation to DTO.
func ToListInvitationsResponse(invs []domain.Invitation) ListInvitationsResponse {
	list := make([]InvitationResponse, len(invs))
	for i := range invs {
		list[i] = ToInvitationResponse(&invs[i])
	}
	return ListInvitationsResponse{Invitations: list}
}
