package dto

import (
	"time"

	"github.com/spec-kit/it-tracker/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Department *string `json:"department,omitempty"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest payload for profile edits.
type UpdateProfileRequest struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Department *string `json:"department,omitempty"`
}

// UpdateRoleRequest payload for admin role changes.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public user shape; the password hash never leaves
// the service.
type UserResponse struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Role       domain.Role `json:"role"`
	Department *string     `json:"department,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// UserFromDomain maps a domain user to its response shape.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
	}
}
