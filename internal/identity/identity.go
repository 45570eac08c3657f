// Package identity carries the authenticated caller through request
// contexts. Handlers read the principal from context instead of reaching
// into headers or any ambient storage.
package identity

import "context"

// Role is the caller's access level.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Principal identifies an authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal may use admin endpoints.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsStaff reports whether the principal may drive booking lifecycle
// transitions (doctor or admin).
func (p Principal) IsStaff() bool { return p.Role == RoleAdmin || p.Role == RoleDoctor }

type contextKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal stored on the context, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// TokenProvider supplies a bearer token per request. The client depends on
// this instead of reading credentials from process-global state.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider returning a fixed token.
type StaticToken string

// Token implements TokenProvider.
func (s StaticToken) Token(ctx context.Context) (string, error) { return string(s), nil }
