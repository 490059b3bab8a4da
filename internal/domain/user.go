package domain

import "time"

// Role determines what a user may do and which role-targeted
// notifications they receive.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role grants triage access to tickets.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is the single identity model; role separates end-users from staff.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Department   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
