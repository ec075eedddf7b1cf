package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// App represents an installable application
type App struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Version     string    `gorm:"column:version" json:"version"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (App) TableName() string {
	return "apps"
}

// DatabaseApp is an installation of an app into a database
type DatabaseApp struct {
	DatabaseID  int64      `gorm:"column:database_id;primaryKey" json:"database_id"`
	AppID       int64      `gorm:"column:app_id;primaryKey" json:"app_id"`
	Config      JSONConfig `gorm:"column:config;type:jsonb" json:"config"`
	InstalledAt time.Time  `gorm:"column:installed_at" json:"installed_at"`
}

func (DatabaseApp) TableName() string {
	return "database_apps"
}

// Installation is an installation joined with its app record
type Installation struct {
	AppID       int64      `gorm:"column:app_id" json:"app_id"`
	Name        string     `gorm:"column:name" json:"name"`
	Version     string     `gorm:"column:version" json:"version"`
	Config      JSONConfig `gorm:"column:config" json:"config"`
	InstalledAt time.Time  `gorm:"column:installed_at" json:"installed_at"`
}

// JSONConfig is a jsonb column carried through to responses verbatim
type JSONConfig json.RawMessage

// Scan implements sql.Scanner; pgx hands jsonb over as string or bytes
func (c *JSONConfig) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = nil
	case string:
		*c = JSONConfig(v)
	case []byte:
		*c = append(JSONConfig(nil), v...)
	default:
		return fmt.Errorf("cannot scan %T into JSONConfig", src)
	}
	return nil
}

// Value implements driver.Valuer
func (c JSONConfig) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "{}", nil
	}
	return string(c), nil
}

// MarshalJSON emits the stored document, or {} when empty
func (c JSONConfig) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("{}"), nil
	}
	return json.RawMessage(c).MarshalJSON()
}

// UnmarshalJSON stores the raw document
func (c *JSONConfig) UnmarshalJSON(data []byte) error {
	*c = append((*c)[0:0], data...)
	return nil
}
