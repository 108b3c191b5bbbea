package domain

// CompanyType selects the company-resolution branch of the signup sequence.
type CompanyType string

const (
	CompanyTypeNew      CompanyType = "new"
	CompanyTypeExisting CompanyType = "existing"
)

// SignupMetadata carries the profile and company details collected at
// sign-up. InvitationCode is an opaque single-use token; the only local
// check is non-emptiness.
type SignupMetadata struct {
	FullName       string
	Role           Role
	CompanyType    CompanyType
	CompanyName    string
	InvitationCode string
}
