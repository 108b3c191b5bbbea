package domain

import "time"

// Company is the tenant boundary. All orders, buy-list items and profiles
// are scoped to exactly one company.
type Company struct {
	CompanyID string    `json:"companyID" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	CreatedBy string    `json:"createdBy" db:"created_by"`
}

// Invitation is a single-use code that lets a signup join an existing
// company with a preset role. Validity and consumption are enforced by the
// invitation repository; callers only check non-emptiness of the code.
type Invitation struct {
	Code      string    `json:"code" db:"code"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CompanyID string    `json:"companyID" db:"company_id"`
	InvitedBy string    `json:"invitedBy" db:"invited_by"`
	IsUsed    bool      `json:"isUsed" db:"is_used"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
