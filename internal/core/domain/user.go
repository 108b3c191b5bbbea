package domain

import "time"

// AuthProvider identifies how an identity authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User is the authentication identity: credentials and issued tokens.
// Application-level data (name, role, company) lives on the Profile keyed
// by the same ID.
type User struct {
	UserID                 string       `json:"userID" db:"user_id"` // Primary key (UUID)
	Email                  string       `json:"email" db:"email"`
	PasswordHash           string       `json:"-" db:"password_hash"`
	AuthProvider           AuthProvider `json:"authProvider" db:"auth_provider"`
	ProviderUserID         *string      `json:"-" db:"provider_user_id"`
	RefreshTokenHash       string       `json:"-" db:"refresh_token_hash"`
	RefreshTokenExpiryTime *time.Time   `json:"-" db:"refresh_token_expiry"`
	CreatedAt              time.Time    `json:"createdAt" db:"created_at"`
	DisabledAt             *time.Time   `json:"disabledAt,omitempty" db:"disabled_at"`
}

// GoogleUserInfo holds the subset of the Google identity payload we consume.
type GoogleUserInfo struct {
	ProviderUserID string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"name"`
	EmailVerified  bool   `json:"verified_email"`
}
