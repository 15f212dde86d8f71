// Package record provides storage for the content records backing settings keys.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

var (
	// ErrRecordNotFound is returned when a record does not exist.
	ErrRecordNotFound = errors.New("settings record not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrLangcodeEmpty is returned when saving values without a language.
	ErrLangcodeEmpty = errors.New("langcode cannot be empty")
)

const (
	preloadTranslations = "Translations"
	orderIDAsc          = "id ASC"
)

// Values are the field values of one translation, keyed by field name.
type Values map[string]any

// Store is the GORM backed record storage.
type Store struct {
	db              *gorm.DB
	defaultLangcode string
}

// NewStore returns a Store creating new records in defaultLangcode.
func NewStore(db *gorm.DB, defaultLangcode string) *Store {
	return &Store{
		db:              db,
		defaultLangcode: defaultLangcode,
	}
}

// DefaultLangcode returns the language new records are created in.
func (s *Store) DefaultLangcode() string {
	return s.defaultLangcode
}

// Query returns the ids of records of bundle that back key.
func (s *Store) Query(ctx context.Context, bundle, key string) ([]uint64, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var ids []uint64

	err := s.db.WithContext(ctx).
		Model(&models.SettingRecord{}).
		Where("type = ? AND settings_key = ?", bundle, key).
		Order(orderIDAsc).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query settings records: %w", err)
	}

	return ids, nil
}

// Create builds an unsaved record of bundle for key with an empty default translation.
func (s *Store) Create(bundle, key string) *models.SettingRecord {
	return &models.SettingRecord{
		Type:            bundle,
		SettingsKey:     key,
		DefaultLangcode: s.defaultLangcode,
		Translations: []models.SettingRecordTranslation{
			{Langcode: s.defaultLangcode, Values: datatypes.JSON("{}")},
		},
	}
}

// Save inserts or updates rec together with its translations.
func (s *Store) Save(ctx context.Context, rec *models.SettingRecord) error {
	if s.db == nil {
		return ErrDBNil
	}

	err := s.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(rec).Error
	if err != nil {
		return fmt.Errorf("failed to save settings record: %w", err)
	}

	return nil
}

// Load returns the records with the given ids, ordered by id.
func (s *Store) Load(ctx context.Context, ids []uint64) ([]models.SettingRecord, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	records := make([]models.SettingRecord, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	err := s.db.WithContext(ctx).
		Preload(preloadTranslations).
		Where("id IN ?", ids).
		Order(orderIDAsc).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load settings records: %w", err)
	}

	return records, nil
}

// List returns all records, ordered by id.
func (s *Store) List(ctx context.Context) ([]models.SettingRecord, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var records []models.SettingRecord

	err := s.db.WithContext(ctx).
		Preload(preloadTranslations).
		Order(orderIDAsc).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list settings records: %w", err)
	}

	return records, nil
}

// Get returns a single record by id.
func (s *Store) Get(ctx context.Context, id uint64) (*models.SettingRecord, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var rec models.SettingRecord

	err := s.db.WithContext(ctx).Preload(preloadTranslations).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}

		return nil, fmt.Errorf("failed to load settings record %d: %w", id, err)
	}

	return &rec, nil
}

// FirstByKey returns the oldest record backing key regardless of its bundle.
func (s *Store) FirstByKey(ctx context.Context, key string) (*models.SettingRecord, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	var rec models.SettingRecord

	err := s.db.WithContext(ctx).
		Preload(preloadTranslations).
		Where("settings_key = ?", key).
		Order(orderIDAsc).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}

		return nil, fmt.Errorf("failed to load settings record for %q: %w", key, err)
	}

	return &rec, nil
}

// SaveValues replaces the values of the langcode translation of record id,
// creating the translation if it does not exist yet.
func (s *Store) SaveValues(ctx context.Context, id uint64, langcode string, values Values) error {
	if s.db == nil {
		return ErrDBNil
	}

	if langcode == "" {
		return ErrLangcodeEmpty
	}

	if values == nil {
		values = Values{}
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode values: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.SettingRecord
		if errFirst := tx.First(&rec, id).Error; errFirst != nil {
			if errors.Is(errFirst, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}

			return fmt.Errorf("failed to load settings record %d: %w", id, errFirst)
		}

		tr := models.SettingRecordTranslation{
			RecordID: id,
			Langcode: langcode,
			Values:   datatypes.JSON(raw),
		}

		errSave := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_id"}, {Name: "langcode"}},
			DoUpdates: clause.AssignmentColumns([]string{"field_values", "updated_at"}),
		}).Create(&tr).Error
		if errSave != nil {
			return fmt.Errorf("failed to save translation %s of record %d: %w", langcode, id, errSave)
		}

		if errTouch := tx.Model(&rec).Update("updated_at", tr.UpdatedAt).Error; errTouch != nil {
			return fmt.Errorf("failed to touch settings record %d: %w", id, errTouch)
		}

		return nil
	})
}

// DecodeValues parses the stored values of a translation. Invalid JSON yields an empty set.
func DecodeValues(tr *models.SettingRecordTranslation) Values {
	values := Values{}
	if tr == nil || len(tr.Values) == 0 {
		return values
	}

	_ = json.Unmarshal(tr.Values, &values)

	return values
}
