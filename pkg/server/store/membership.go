package store

import (
	"context"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
)

// MembershipStore answers the membership question asked by authorization.
// Both methods are pure reads.
type MembershipStore interface {
	// IsMember reports whether a membership row exists for the pair.
	// A missing row is (false, nil); a storage failure is a *DataAccessError.
	IsMember(ctx context.Context, userID, databaseID int64) (bool, error)

	// UserIDByEmail resolves an account email to its numeric id.
	// Returns ErrNotFound for an unknown email.
	UserIDByEmail(ctx context.Context, email string) (int64, error)
}

// MembersStore administers memberships of a database
type MembersStore interface {
	// ListMembers returns the members of a database joined with their accounts.
	ListMembers(ctx context.Context, databaseID int64) ([]model.Member, error)

	// AddMember adds a user to a database.
	// Returns ErrConflict if already a member and ErrNotFound if the user doesn't exist.
	AddMember(ctx context.Context, databaseID, userID int64, role string) error

	// RemoveMember removes a user from a database.
	RemoveMember(ctx context.Context, databaseID, userID int64) error
}
