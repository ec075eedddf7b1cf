// Package gorm implements the store interfaces on PostgreSQL through GORM.
//
// Queries are raw SQL run with db.Raw or db.Exec under the caller's context.
// Driver errors pass through classify, which turns missing rows and foreign
// key violations into store.ErrNotFound, unique violations into
// store.ErrConflict, and everything else into a *store.DataAccessError.
package gorm
