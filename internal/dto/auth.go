package dto

import (
	"time"

	"github.com/atelierhq/order_tracking_app/internal/core/domain"
)

// --- Auth DTOs ---

// SignupRequest defines data for registering a new account. The company
// fields select the resolution branch: a new company needs companyName, an
// existing one needs invitationCode.
type SignupRequest struct {
	Email          string             `json:"email" binding:"required,email"`
	Password       string             `json:"password" binding:"required,min=8"`
	FullName       string             `json:"fullName" binding:"required"`
	Role           domain.Role        `json:"role" binding:"omitempty,oneof=worker manager"`
	CompanyType    domain.CompanyType `json:"companyType" binding:"required,oneof=new existing"`
	CompanyName    string             `json:"companyName"`
	InvitationCode string             `json:"invitationCode"`
}

// ToSignupMetadata converts the request into the service-layer metadata.
func (r *SignupRequest) ToSignupMetadata() domain.SignupMetadata {
	return domain.SignupMetadata{
		FullName:       r.FullName,
		Role:           r.Role,
		CompanyType:    r.CompanyType,
		CompanyName:    r.CompanyName,
		InvitationCode: r.InvitationCode,
	}
}

// SignupResponse reports the identity plus how far setup got. State is the
// session gate state after signup; a degraded state tells the client to
// offer the repair flow.
type SignupResponse struct {
	UserID string              `json:"userID"`
	Email  string              `json:"email"`
	State  domain.SessionState `json:"state"`
}

// LoginRequest defines credentials for password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token; the refresh token travels in an
// HTTP-only cookie.
type LoginResponse struct {
	UserID            string    `json:"userID"`
	AccessToken       string    `json:"accessToken"`
	AccessTokenExpiry time.Time `json:"accessTokenExpiry"`
}

// RefreshRequest identifies the session to refresh. The token itself comes
// from the cookie.
type RefreshRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// ResetPasswordRequest asks for a password reset token.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}
