package model

import "time"

// Database represents a workspace
type Database struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	OwnerID     *int64    `gorm:"column:owner_id" json:"owner_id,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Database) TableName() string {
	return "databases"
}

// Membership roles within a database
const (
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"
)

// DatabaseUser is a membership row linking a user to a database
type DatabaseUser struct {
	UserID     int64     `gorm:"column:user_id;primaryKey" json:"user_id"`
	DatabaseID int64     `gorm:"column:database_id;primaryKey" json:"database_id"`
	Role       string    `gorm:"column:role;not null;default:member" json:"role"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (DatabaseUser) TableName() string {
	return "database_users"
}

// Member is a membership joined with the member's user record
type Member struct {
	UserID int64  `gorm:"column:user_id" json:"user_id"`
	Email  string `gorm:"column:email" json:"email"`
	Name   string `gorm:"column:name" json:"name"`
	Role   string `gorm:"column:role" json:"role"`
}

// ValidMemberRole reports whether r is an accepted membership role
func ValidMemberRole(r string) bool {
	return r == MemberRoleAdmin || r == MemberRoleMember
}
