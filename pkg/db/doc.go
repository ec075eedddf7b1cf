// Package db provides database connection utilities for dbhub.
//
// This package handles PostgreSQL connections using GORM. Callers pass the
// connection URL explicitly, usually from the loaded configuration:
//
//	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL})
//	if err != nil {
//	    log.Fatal(err)
//	}
package db
