package models

import "time"

// Role groups permissions, e.g. "admin" manages keys while "editor" only edits content.
type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;size:100;not null"`
	Description string `gorm:"size:255"`
	// IsSystem marks seeded roles that must not be deleted.
	IsSystem  bool `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default table naming.
func (Role) TableName() string {
	return "roles"
}
