package dto

import "github.com/spec-kit/talent-service/internal/domain"

// RegisterRequest payload for new users.
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	// bcrypt ignores input past 72 bytes.
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID             int64       `json:"id"`
	FullName       string      `json:"full_name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	OrganizationID *int64      `json:"organization_id,omitempty"`
}

// AuthResponse is returned by register and login. The refresh token travels
// only in its cookie.
type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// RefreshResponse is returned by refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// NewUserResponse maps a user record.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	}
}
