package models

import (
	"time"

	"gorm.io/datatypes"
)

// SettingRecord is the content record backing one registered settings key.
// It is linked to its key only by the SettingsKey and Type (bundle) columns.
// There is intentionally no unique index on (type, settings_key).
type SettingRecord struct {
	// ID is the unique identifier for the record.
	ID uint64 `gorm:"primaryKey"`
	// Type is the bundle name describing which fields the record carries.
	Type string `gorm:"size:64;not null;index:idx_setting_records_type_key,priority:1"`
	// SettingsKey is the registry key this record backs.
	SettingsKey string `gorm:"size:64;not null;index:idx_setting_records_type_key,priority:2;index"`
	// DefaultLangcode is the language of the original translation.
	DefaultLangcode string `gorm:"size:12;not null"`
	// Translations holds one row per language.
	Translations []SettingRecordTranslation `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the record was last updated (managed by GORM).
	UpdatedAt time.Time
}

// SettingRecordTranslation holds the field values of a SettingRecord for one language.
type SettingRecordTranslation struct {
	ID       uint64         `gorm:"primaryKey"`
	RecordID uint64         `gorm:"not null;uniqueIndex:idx_record_langcode,priority:1"`
	Langcode string         `gorm:"size:12;not null;uniqueIndex:idx_record_langcode,priority:2"`
	Values   datatypes.JSON `gorm:"column:field_values;not null"`

	UpdatedAt time.Time
}

// Translation returns the translation for langcode or nil when missing.
func (r *SettingRecord) Translation(langcode string) *SettingRecordTranslation {
	for i := range r.Translations {
		if r.Translations[i].Langcode == langcode {
			return &r.Translations[i]
		}
	}

	return nil
}

// Langcodes lists the languages this record has translations for.
func (r *SettingRecord) Langcodes() []string {
	out := make([]string, 0, len(r.Translations))
	for i := range r.Translations {
		out = append(out, r.Translations[i].Langcode)
	}

	return out
}
