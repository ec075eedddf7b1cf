//go:build !embed_migrations

package main

import (
	"os"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
)

const migrationSourceName = "file"

// openMigrationSource reads migrations from DBHUB_MIGRATIONS_PATH, or
// db/migrations relative to the working directory.
func openMigrationSource() (source.Driver, error) {
	dir := os.Getenv("DBHUB_MIGRATIONS_PATH")
	if dir == "" {
		dir = "db/migrations"
	}
	return (&file.File{}).Open("file://" + dir)
}
