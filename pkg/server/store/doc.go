// Package store provides storage abstractions for the dbhub server.
//
// This package defines interfaces for database operations so endpoints and
// middleware are decoupled from the database implementation. The gorm
// subpackage provides the PostgreSQL implementation.
//
// # Available Stores
//
//   - UsersStore: account registration, login and profile operations
//   - DatabasesStore: workspace CRUD
//   - MembershipStore: the membership check consulted by authorization
//   - MembersStore: membership administration
//   - AppsStore: app catalogue CRUD
//   - InstallationsStore: apps installed into a database
//   - HealthStore: connectivity check
//
// # Errors
//
// Lookups that find nothing return ErrNotFound, uniqueness violations return
// ErrConflict, and any other storage failure is a *DataAccessError. A
// DataAccessError never means "no" to a yes/no question:
//
//	ok, err := members.IsMember(ctx, userID, databaseID)
//	var dae *store.DataAccessError
//	if errors.As(err, &dae) {
//	    // respond 500
//	}
package store
