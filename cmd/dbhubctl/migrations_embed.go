//go:build embed_migrations

package main

import (
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/doodlesbykumbi/dbhub/db"
)

const migrationSourceName = "iofs"

// openMigrationSource reads the migrations compiled into the binary
func openMigrationSource() (source.Driver, error) {
	sub, err := fs.Sub(db.Migrations, "migrations")
	if err != nil {
		return nil, err
	}
	return iofs.New(sub, ".")
}
