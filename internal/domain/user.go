package domain

import "time"

// User is the domain model for an account holder. It doubles as the credential
// record: PasswordHash and RefreshTokenHash are the only credential fields.
type User struct {
	ID             int64
	FullName       string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID *int64
	// RefreshTokenHash is the one-way hash of the last issued refresh token.
	// Nil means no active session.
	RefreshTokenHash *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasActiveSession reports whether a refresh token hash is bound to the user.
func (u *User) HasActiveSession() bool {
	return u.RefreshTokenHash != nil && *u.RefreshTokenHash != ""
}
