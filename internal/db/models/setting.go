// Package models contains database model definitions.
package models

import "time"

// Setting is a named configuration aggregate stored as an opaque JSON blob.
// The key registry keeps all of its definitions in a single Setting row.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:191;not null"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}
