package domain

import (
	"errors"
	"time"
)

// User is the core user entity.
type User struct {
	ID         string
	Email      string
	Name       string
	Role       Role
	Status     UserStatus
	Department string
	Position   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Role is the console-wide role of a user. It is a closed set; code that
// branches on it should switch over all three values.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleEmployee       Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleEmployee:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusPending  UserStatus = "pending"
	UserStatusDisabled UserStatus = "disabled"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
