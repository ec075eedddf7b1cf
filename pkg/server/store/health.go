package store

import (
	"context"
	"errors"
)

// ErrNotMigrated is returned by HealthStore.Check when the database answers
// but the membership relation does not exist yet.
var ErrNotMigrated = errors.New("database schema is not migrated")

// HealthStore reports whether the database can serve authorization lookups
type HealthStore interface {
	// Check returns nil when the database is reachable and migrated,
	// ErrNotMigrated when the schema is missing, and a *DataAccessError
	// when the database cannot be reached.
	Check(ctx context.Context) error
}
