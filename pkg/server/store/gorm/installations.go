package gorm

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
	"github.com/doodlesbykumbi/dbhub/pkg/server/store"
)

// Ensure InstallationsStore implements store.InstallationsStore
var _ store.InstallationsStore = (*InstallationsStore)(nil)

// InstallationsStore implements store.InstallationsStore using GORM
type InstallationsStore struct {
	db *gorm.DB
}

// NewInstallationsStore creates a new InstallationsStore
func NewInstallationsStore(db *gorm.DB) *InstallationsStore {
	return &InstallationsStore{db: db}
}

// ListInstallations returns the apps installed in a database.
func (s *InstallationsStore) ListInstallations(ctx context.Context, databaseID int64) ([]model.Installation, error) {
	installations := []model.Installation{}
	tx := s.db.WithContext(ctx).Raw(`
		SELECT da.app_id, a.name, a.version, da.config, da.installed_at
		FROM database_apps da
		JOIN apps a ON a.id = da.app_id
		WHERE da.database_id = ?
		ORDER BY a.name
	`, databaseID).Scan(&installations)
	if tx.Error != nil {
		return nil, classify("list installations", tx.Error)
	}
	return installations, nil
}

// Install installs an app into a database.
func (s *InstallationsStore) Install(ctx context.Context, databaseID, appID int64, config json.RawMessage) (*model.DatabaseApp, error) {
	if len(config) == 0 {
		config = json.RawMessage(`{}`)
	}
	var installation model.DatabaseApp
	tx := s.db.WithContext(ctx).Raw(
		`INSERT INTO database_apps (database_id, app_id, config) VALUES (?, ?, ?) RETURNING database_id, app_id, config, installed_at`,
		databaseID, appID, string(config),
	).Scan(&installation)
	if tx.Error != nil {
		return nil, classify("install app", tx.Error)
	}
	return &installation, nil
}

// Uninstall removes an installation.
func (s *InstallationsStore) Uninstall(ctx context.Context, databaseID, appID int64) error {
	tx := s.db.WithContext(ctx).Exec(
		`DELETE FROM database_apps WHERE database_id = ? AND app_id = ?`,
		databaseID, appID,
	)
	if tx.Error != nil {
		return classify("uninstall app", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
