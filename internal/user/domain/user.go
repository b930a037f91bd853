package domain

import (
	"time"
)

// Roles available in the system. Admins manage the shop and its staff,
// employees handle day to day sales and stock.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User represents a staff account
type User struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	Role         string     `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether the given role is one the system knows
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
