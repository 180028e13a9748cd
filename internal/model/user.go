package model

import (
	"fmt"
	"strings"
	"time"
)

// User represents an account held by the identity provider.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	Language     string     `json:"language,omitempty"`
	Role         string     `json:"role,omitempty"` // role claim attached by the identity provider, may be empty
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Profile is the marketplace-side record keyed by user id.
type Profile struct {
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the acting user for a single operation.
// Role is informational only; authorization re-resolves it from the store.
type Identity struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Role   string `json:"role,omitempty"`
}

// IdentityOf builds an Identity from a user record.
func IdentityOf(u *User) *Identity {
	return &Identity{
		UserID: u.ID,
		Name:   u.FullName,
		Phone:  u.Phone,
		Role:   u.Role,
	}
}

// ParseRole recognizes a role case-insensitively.
// Empty and legacy values are reported as not recognized.
func ParseRole(s string) (string, bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), RoleAdmin):
		return RoleAdmin, true
	case strings.EqualFold(strings.TrimSpace(s), RoleUser):
		return RoleUser, true
	}
	return "", false
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
