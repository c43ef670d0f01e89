package domain

// Role names carried in tokens and on the user record.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleUser      Role = "user"
)

// DefaultRole is assigned on self-registration.
const DefaultRole = RoleUser

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRecruiter, RoleUser:
		return true
	}
	return false
}

// TokenPair is an access credential plus its renewable counterpart.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
