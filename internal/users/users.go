// Package users exposes the admin view over registered accounts.
// Registration and login are handled by the identity provider; this
// package only manages the mirrored account records.
package users

import (
	"errors"
	"time"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
)

// ErrNotFound indicates the account does not exist.
var ErrNotFound = errors.New("users: user not found")

// ErrInvalidRole indicates an unknown role value.
var ErrInvalidRole = errors.New("users: invalid role")

// User is a registered account.
type User struct {
	ID        string        `json:"_id"`
	FullName  string        `json:"fullName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Role      identity.Role `json:"role"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ValidRole reports whether the value is an assignable role.
func ValidRole(r identity.Role) bool {
	switch r {
	case identity.RolePatient, identity.RoleDoctor, identity.RoleAdmin:
		return true
	}
	return false
}
