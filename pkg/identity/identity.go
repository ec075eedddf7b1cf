package identity

import (
	"context"
	"fmt"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Role is a system-wide user role.
type Role string

const (
	// RoleAdmin is the elevated-privilege role.
	RoleAdmin Role = "admin"
	// RoleUser is the standard role assigned on registration.
	RoleUser Role = "user"
	// RoleGuest is a read-only variant of RoleUser.
	RoleGuest Role = "guest"
)

// Roles lists every recognized role.
var Roles = []Role{RoleAdmin, RoleUser, RoleGuest}

// ParseRole returns the Role named by s. Matching is exact.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// Claims is the fixed payload of a session token.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Identity represents the authenticated identity for a request.
type Identity struct {
	Email string
	Role  Role
}

// FromClaims creates an Identity from verified token claims.
func FromClaims(c Claims) *Identity {
	return &Identity{
		Email: c.Email,
		Role:  c.Role,
	}
}

// IsPrivileged returns true if the identity holds the elevated role.
func (i *Identity) IsPrivileged() bool {
	return i != nil && i.Role == RoleAdmin
}

// Authenticated returns true if the identity names a subject.
func (i *Identity) Authenticated() bool {
	return i != nil && i.Email != ""
}

// String returns the subject, or "anonymous".
func (i *Identity) String() string {
	if !i.Authenticated() {
		return "anonymous"
	}
	return i.Email
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok && id != nil
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
