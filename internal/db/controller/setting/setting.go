// Package setting stores named configuration aggregates in the settings table.
package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when no aggregate with the requested name exists.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when an empty name is used.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var s models.Setting

	result := db.WithContext(ctx).Where(nameQueryPattern, name).First(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, fmt.Errorf("failed to load setting %q: %w", name, result.Error)
	}

	return &s, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(ctx context.Context, db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if err := db.WithContext(ctx).Order("name ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return settings, nil
}

// Set creates or replaces the value of a setting.
// The write is a single upsert statement so the aggregate is never partially written.
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	s := &models.Setting{Name: name, Value: value}

	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(s)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save setting %q: %w", name, result.Error)
	}

	return s, nil
}

// DeleteByName deletes a setting by name.
func DeleteByName(ctx context.Context, db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting %q: %w", name, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// Store exposes the settings table as a blob store keyed by aggregate name.
type Store struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load returns the raw value of the named aggregate. A missing aggregate yields nil.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	row, err := Get(ctx, s.db, name)
	if errors.Is(err, ErrSettingNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return row.Value, nil
}

// Save replaces the raw value of the named aggregate.
func (s *Store) Save(ctx context.Context, name string, value []byte) error {
	_, err := Set(ctx, s.db, name, value)

	return err
}
