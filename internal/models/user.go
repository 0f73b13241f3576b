package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleCitizen UserRole = "citizen"
	RoleStaff   UserRole = "staff"
	RoleDeputy  UserRole = "deputy"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleStaff, RoleDeputy, RoleAdmin:
		return true
	}
	return false
}

// User represents a portal profile stored in the users table. AuthID links
// it to the identity that authenticates it.
type User struct {
	ID         string    `db:"id" json:"id"`
	AuthID     string    `db:"auth_id" json:"-"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	NationalID *string   `db:"national_id" json:"national_id,omitempty"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Region     *string   `db:"region" json:"region,omitempty"`
	Role       UserRole  `db:"role" json:"role"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Page     int
	PageSize int
}

// ProfileUpdate carries the self-service profile fields. Nil leaves a column untouched.
type ProfileUpdate struct {
	FullName  *string
	Phone     *string
	AvatarURL *string
	Region    *string
}

// Principal is the resolved caller attached to an authenticated request.
type Principal struct {
	UserID   string   `json:"user_id"`
	AuthID   string   `json:"-"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`

	TokenID        string    `json:"-"`
	TokenExpiresAt time.Time `json:"-"`
}

// IsCitizen reports whether the caller is a constituent rather than office staff.
func (p Principal) IsCitizen() bool {
	return p.Role == RoleCitizen
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// TotalPages reports how many pages the listing spans.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}
