package store

import (
	"context"
	"encoding/json"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
)

// InstallationsStore abstracts apps installed into a database
type InstallationsStore interface {
	// ListInstallations returns the apps installed in a database.
	ListInstallations(ctx context.Context, databaseID int64) ([]model.Installation, error)

	// Install installs an app into a database.
	// Returns ErrConflict if already installed and ErrNotFound if the app doesn't exist.
	Install(ctx context.Context, databaseID, appID int64, config json.RawMessage) (*model.DatabaseApp, error)

	// Uninstall removes an installation.
	Uninstall(ctx context.Context, databaseID, appID int64) error
}
