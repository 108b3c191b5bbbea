package domain

// Role is the application-level role of a profile within its company.
type Role string

const (
	RoleWorker  Role = "worker"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// SetupStage tracks progress of the non-transactional signup sequence so the
// repair path can resume from the correct step instead of re-running blindly.
type SetupStage string

const (
	StageRegistered      SetupStage = "registered"       // minimal profile row exists
	StageProfileUpdated  SetupStage = "profile_updated"  // name/role/email written
	StageCompanyResolved SetupStage = "company_resolved" // company_id set, setup complete
)

// Profile is the application-level user record layered over a User identity.
// CompanyID is nullable: its absence is a recoverable degraded state, not a
// hard failure.
type Profile struct {
	ProfileID  string     `json:"profileID" db:"profile_id"` // = users.user_id
	FullName   string     `json:"fullName" db:"full_name"`
	Email      string     `json:"email" db:"email"`
	Role       Role       `json:"role" db:"role"`
	CompanyID  *string    `json:"companyID" db:"company_id"`
	SetupStage SetupStage `json:"setupStage" db:"setup_stage"`
	AuditFields
}

// Degraded reports whether the profile lacks a resolved company.
func (p *Profile) Degraded() bool {
	return p.CompanyID == nil || *p.CompanyID == ""
}

// Capabilities are role-derived flags, a pure function of Role.
type Capabilities struct {
	IsManager bool `json:"isManager"`
	IsAdmin   bool `json:"isAdmin"`
	IsWorker  bool `json:"isWorker"`
}

// DeriveCapabilities computes capability flags from a role.
func DeriveCapabilities(role Role) Capabilities {
	return Capabilities{
		IsManager: role == RoleManager || role == RoleAdmin,
		IsAdmin:   role == RoleAdmin,
		IsWorker:  role == RoleWorker,
	}
}

// SessionState is the authorization gate state derived from the current
// identity and profile.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionNoProfile       SessionState = "authenticated_no_profile"
	SessionDegraded        SessionState = "authenticated_degraded"
	SessionReady           SessionState = "authenticated_ready"
)

// DeriveSessionState computes the gate state for an authenticated identity.
// profile may be nil when no row exists yet.
func DeriveSessionState(authenticated bool, profile *Profile) SessionState {
	switch {
	case !authenticated:
		return SessionUnauthenticated
	case profile == nil:
		return SessionNoProfile
	case profile.Degraded():
		return SessionDegraded
	default:
		return SessionReady
	}
}
