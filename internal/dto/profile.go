package dto

import (
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
	portssvc "github.com/atelierhq/order_tracking_app/internal/core/ports/services"
)

// --- Profile / session DTOs ---

// ProfileResponse defines data returned for a profile.
type ProfileResponse struct {
	ProfileID  string            `json:"profileID"`
	FullName   string            `json:"fullName"`
	Email      string            `json:"email"`
	Role       domain.Role       `json:"role"`
	CompanyID  *string           `json:"companyID"`
	SetupStage domain.SetupStage `json:"setupStage"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// ToProfileResponse converts domain.Profile to DTO.
func ToProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ProfileID:  p.ProfileID,
		FullName:   p.FullName,
		Email:      p.Email,
		Role:       p.Role,
		CompanyID:  p.CompanyID,
		SetupStage: p.SetupStage,
		CreatedAt:  p.CreatedAt,
	}
}

// ListProfilesResponse wraps a list of profiles.
type ListProfilesResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

// ToListProfilesResponse converts a slice of domain.Profile to DTO.
func ToListProfilesResponse(ps []domain.Profile) ListProfilesResponse {
	list := make([]ProfileResponse, len(ps))
	for i := range ps {
		list[i] = ToProfileResponse(&ps[i])
	}
	return ListProfilesResponse{Profiles: list}
}

// UpdateProfileRequest defines the mutable profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"fullName" binding:"required"`
}

// SessionResponse reports the gate state for the current identity: the
// state, the profile when one exists, and the role-derived capabilities.
type SessionResponse struct {
	State        domain.SessionState `json:"state"`
	Profile      *ProfileResponse    `json:"profile,omitempty"`
	Capabilities domain.Capabilities `json:"capabilities"`
}

// ToSessionResponse converts a session overview to DTO.
func ToSessionResponse(s *portssvc.SessionOverview) SessionResponse {
	resp := SessionResponse{
		State:        s.State,
		Capabilities: s.Capabilities,
	}
	if s.Profile != nil {
		p := ToProfileResponse(s.Profile)
		resp.Profile = &p
	}
	return resp
}
