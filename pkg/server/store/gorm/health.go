package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore checks that the membership table exists
type HealthStore struct {
	db *gorm.DB
}

func NewHealthStore(db *gorm.DB) *HealthStore {
	return &HealthStore{db: db}
}

func (s *HealthStore) Check(ctx context.Context) error {
	var migrated bool
	tx := s.db.WithContext(ctx).Raw(`SELECT to_regclass('database_users') IS NOT NULL`).Scan(&migrated)
	if tx.Error != nil {
		return store.NewDataAccessError("health check", tx.Error)
	}
	if !migrated {
		return store.ErrNotMigrated
	}
	return nil
}
