// Package model defines the database models for dbhub.
//
// # Core Models
//
//   - User: an account that can log in and hold a role
//   - Database: a workspace owned by a user
//   - App: an installable application
//   - DatabaseUser: membership of a user in a database
//   - DatabaseApp: installation of an app into a database
//
// # Database Schema
//
//   - users, databases, apps: entity tables
//   - database_users: composite key (user_id, database_id), cascade-deleted
//   - database_apps: composite key (database_id, app_id), cascade-deleted
package model
