package store

import (
	"context"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
)

// DatabaseUpdate holds optional workspace changes; nil fields are left alone
type DatabaseUpdate struct {
	Name        *string
	Description *string
}

// DatabasesStore abstracts workspace storage operations
type DatabasesStore interface {
	// CreateDatabase creates a workspace and makes the owner an admin member
	// in the same transaction.
	CreateDatabase(ctx context.Context, ownerID int64, name, description string) (*model.Database, error)

	// GetDatabase returns a workspace by id.
	GetDatabase(ctx context.Context, id int64) (*model.Database, error)

	// ListDatabases returns all workspaces.
	ListDatabases(ctx context.Context) ([]model.Database, error)

	// ListDatabasesForUser returns the workspaces the given email belongs to.
	ListDatabasesForUser(ctx context.Context, email string) ([]model.Database, error)

	// UpdateDatabase applies a workspace update.
	UpdateDatabase(ctx context.Context, id int64, u DatabaseUpdate) (*model.Database, error)

	// DeleteDatabase removes a workspace with its memberships and installations.
	DeleteDatabase(ctx context.Context, id int64) error
}
