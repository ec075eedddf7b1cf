// Package db holds the SQL migrations for dbhub so they can be compiled
// into the dbhubctl binary with the embed_migrations build tag.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
