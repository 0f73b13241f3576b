package dto

import "github.com/noah-isme/civic-desk-api/internal/models"

// SignupRequest captures POST /auth/signup payload.
type SignupRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=8"`
	FullName   string          `json:"full_name" validate:"required,min=3"`
	Phone      *string         `json:"phone,omitempty"`
	Role       models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=citizen staff deputy admin"`
	NationalID *string         `json:"national_id,omitempty"`
}

// SigninRequest captures POST /auth/signin payload.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new session.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest captures PUT /auth/profile payload. Omitted fields stay unchanged.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name,omitempty" validate:"omitempty,min=3"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Region    *string `json:"region,omitempty"`
}

// SetRoleRequest captures PUT /users/:id/role payload.
type SetRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=citizen staff deputy admin"`
}

// SessionMeta describes the client a session is issued to.
type SessionMeta struct {
	IP        string
	UserAgent string
}
