package models

import "time"

// Permission is a named access right in resource.action format, e.g. "settings.content".
type Permission struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;size:100;not null"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default table naming.
func (Permission) TableName() string {
	return "permissions"
}
