package store

import (
	"context"

	"github.com/doodlesbykumbi/dbhub/pkg/model"
)

// AppUpdate holds optional app changes; nil fields are left alone
type AppUpdate struct {
	Name        *string
	Description *string
	Version     *string
}

// AppsStore abstracts the app catalogue
type AppsStore interface {
	ListApps(ctx context.Context) ([]model.App, error)
	GetApp(ctx context.Context, id int64) (*model.App, error)
	// CreateApp returns ErrConflict if the name is taken.
	CreateApp(ctx context.Context, name, description, version string) (*model.App, error)
	UpdateApp(ctx context.Context, id int64, u AppUpdate) (*model.App, error)
	DeleteApp(ctx context.Context, id int64) error
}
