package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// Ensure AppsStore implements store.AppsStore
var _ store.AppsStore = (*AppsStore)(nil)

const appColumns = `id, name, description, version, created_at`

// AppsStore implements store.AppsStore using GORM
type AppsStore struct {
	db *gorm.DB
}

// NewAppsStore creates a new AppsStore
func NewAppsStore(db *gorm.DB) *AppsStore {
	return &AppsStore{db: db}
}

func (s *AppsStore) ListApps(ctx context.Context) ([]model.App, error) {
	apps := []model.App{}
	tx := s.db.WithContext(ctx).Raw(`SELECT ` + appColumns + ` FROM apps ORDER BY name`).Scan(&apps)
	if tx.Error != nil {
		return nil, classify("list apps", tx.Error)
	}
	return apps, nil
}

func (s *AppsStore) GetApp(ctx context.Context, id int64) (*model.App, error) {
	var app model.App
	tx := s.db.WithContext(ctx).Raw(`SELECT `+appColumns+` FROM apps WHERE id = ?`, id).Scan(&app)
	if tx.Error != nil {
		return nil, classify("get app", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &app, nil
}

func (s *AppsStore) CreateApp(ctx context.Context, name, description, version string) (*model.App, error) {
	var app model.App
	tx := s.db.WithContext(ctx).Raw(
		`INSERT INTO apps (name, description, version) VALUES (?, ?, ?) RETURNING `+appColumns,
		name, description, version,
	).Scan(&app)
	if tx.Error != nil {
		return nil, classify("create app", tx.Error)
	}
	return &app, nil
}

func (s *AppsStore) UpdateApp(ctx context.Context, id int64, u store.AppUpdate) (*model.App, error) {
	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Version != nil {
		updates["version"] = *u.Version
	}
	if len(updates) == 0 {
		return s.GetApp(ctx, id)
	}

	tx := s.db.WithContext(ctx).Model(&model.App{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, classify("update app", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetApp(ctx, id)
}

func (s *AppsStore) DeleteApp(ctx context.Context, id int64) error {
	tx := s.db.WithContext(ctx).Exec(`DELETE FROM apps WHERE id = ?`, id)
	if tx.Error != nil {
		return classify("delete app", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
