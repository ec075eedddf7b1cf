package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// Ensure DatabasesStore implements store.DatabasesStore
var _ store.DatabasesStore = (*DatabasesStore)(nil)

const databaseColumns = `id, name, description, owner_id, created_at`

// DatabasesStore implements store.DatabasesStore using GORM
type DatabasesStore struct {
	db *gorm.DB
}

// NewDatabasesStore creates a new DatabasesStore
func NewDatabasesStore(db *gorm.DB) *DatabasesStore {
	return &DatabasesStore{db: db}
}

// CreateDatabase creates a workspace and its owner's admin membership.
func (s *DatabasesStore) CreateDatabase(ctx context.Context, ownerID int64, name, description string) (*model.Database, error) {
	var database model.Database
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Raw(
			`INSERT INTO databases (name, description, owner_id) VALUES (?, ?, ?) RETURNING `+databaseColumns,
			name, description, ownerID,
		).Scan(&database)
		if res.Error != nil {
			return res.Error
		}
		return tx.Exec(
			`INSERT INTO database_users (user_id, database_id, role) VALUES (?, ?, ?)`,
			ownerID, database.ID, model.MemberRoleAdmin,
		).Error
	})
	if err != nil {
		return nil, classify("create database", err)
	}
	return &database, nil
}

// GetDatabase returns a workspace by id.
func (s *DatabasesStore) GetDatabase(ctx context.Context, id int64) (*model.Database, error) {
	var database model.Database
	tx := s.db.WithContext(ctx).Raw(`SELECT `+databaseColumns+` FROM databases WHERE id = ?`, id).Scan(&database)
	if tx.Error != nil {
		return nil, classify("get database", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &database, nil
}

// ListDatabases returns all workspaces.
func (s *DatabasesStore) ListDatabases(ctx context.Context) ([]model.Database, error) {
	databases := []model.Database{}
	tx := s.db.WithContext(ctx).Raw(`SELECT ` + databaseColumns + ` FROM databases ORDER BY id`).Scan(&databases)
	if tx.Error != nil {
		return nil, classify("list databases", tx.Error)
	}
	return databases, nil
}

// ListDatabasesForUser returns the workspaces the given email belongs to.
func (s *DatabasesStore) ListDatabasesForUser(ctx context.Context, email string) ([]model.Database, error) {
	databases := []model.Database{}
	tx := s.db.WithContext(ctx).Raw(`
		SELECT d.id, d.name, d.description, d.owner_id, d.created_at
		FROM databases d
		JOIN database_users du ON du.database_id = d.id
		JOIN users u ON u.id = du.user_id
		WHERE u.email = ?
		ORDER BY d.id
	`, email).Scan(&databases)
	if tx.Error != nil {
		return nil, classify("list databases for user", tx.Error)
	}
	return databases, nil
}

// UpdateDatabase applies a workspace update.
func (s *DatabasesStore) UpdateDatabase(ctx context.Context, id int64, u store.DatabaseUpdate) (*model.Database, error) {
	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if len(updates) == 0 {
		return s.GetDatabase(ctx, id)
	}

	tx := s.db.WithContext(ctx).Model(&model.Database{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, classify("update database", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetDatabase(ctx, id)
}

// DeleteDatabase removes a workspace.
func (s *DatabasesStore) DeleteDatabase(ctx context.Context, id int64) error {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM databases WHERE id = ?`, id)
	if tx.Error != nil {
		return classify("delete database", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
