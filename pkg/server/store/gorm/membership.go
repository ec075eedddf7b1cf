package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// Ensure MembershipStore implements store.MembershipStore and store.MembersStore
var (
	_ store.MembershipStore = (*MembershipStore)(nil)
	_ store.MembersStore    = (*MembershipStore)(nil)
)

// MembershipStore implements the membership interfaces using GORM
type MembershipStore struct {
	db *gorm.DB
}

// NewMembershipStore creates a new MembershipStore
func NewMembershipStore(db *gorm.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

// IsMember reports whether a membership row exists for the pair.
func (s *MembershipStore) IsMember(ctx context.Context, userID, databaseID int64) (bool, error) {
	var exists bool
	tx := s.db.WithContext(ctx).Raw(
		`SELECT EXISTS (SELECT 1 FROM database_users WHERE user_id = ? AND database_id = ?)`,
		userID, databaseID,
	).Scan(&exists)
	if tx.Error != nil {
		return false, store.NewDataAccessError("is member", tx.Error)
	}
	return exists, nil
}

// UserIDByEmail resolves an account email to its numeric id.
func (s *MembershipStore) UserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	tx := s.db.WithContext(ctx).Raw(`SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if tx.Error != nil {
		return 0, store.NewDataAccessError("user id by email", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

// ListMembers returns the members of a database joined with their accounts.
func (s *MembershipStore) ListMembers(ctx context.Context, databaseID int64) ([]model.Member, error) {
	members := []model.Member{}
	tx := s.db.WithContext(ctx).Raw(`
		SELECT du.user_id, u.email, u.name, du.role
		FROM database_users du
		JOIN users u ON u.id = du.user_id
		WHERE du.database_id = ?
		ORDER BY u.email
	`, databaseID).Scan(&members)
	if tx.Error != nil {
		return nil, classify("list members", tx.Error)
	}
	return members, nil
}

// AddMember adds a user to a database.
func (s *MembershipStore) AddMember(ctx context.Context, databaseID, userID int64, role string) error {
	tx := s.db.WithContext(ctx).Exec(
		`INSERT INTO database_users (user_id, database_id, role) VALUES (?, ?, ?)`,
		userID, databaseID, role,
	)
	return classify("add member", tx.Error)
}

// RemoveMember removes a user from a database.
func (s *MembershipStore) RemoveMember(ctx context.Context, databaseID, userID int64) error {
	tx := s.db.WithContext(ctx).Exec(
		`DELETE FROM database_users WHERE user_id = ? AND database_id = ?`,
		userID, databaseID,
	)
	if tx.Error != nil {
		return classify("remove member", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
