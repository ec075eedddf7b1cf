package store

import (
	"context"

	"github.com/doodlesbykumbi/dbhub/pkg/identity"
	"github.com/doodlesbykumbi/dbhub/pkg/model"
)

// NewUser holds the fields needed to register an account
type NewUser struct {
	Email    string
	Name     string
	Password string
	Role     identity.Role
}

// UserUpdate holds optional profile changes; nil fields are left alone
type UserUpdate struct {
	Name     *string
	Password *string
}

// UsersStore abstracts account storage operations
type UsersStore interface {
	// CreateUser registers a new account.
	// Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, u NewUser) (*model.User, error)

	// Authenticate checks an email/password pair.
	// Returns ErrInvalidCredentials on any mismatch, including unknown email.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)

	// GetUser returns the account with the given email.
	GetUser(ctx context.Context, email string) (*model.User, error)

	// ListUsers returns all accounts.
	ListUsers(ctx context.Context) ([]model.User, error)

	// UpdateUser applies a profile update.
	UpdateUser(ctx context.Context, email string, u UserUpdate) (*model.User, error)

	// DeleteUser removes an account and, by cascade, its memberships.
	DeleteUser(ctx context.Context, email string) error
}
