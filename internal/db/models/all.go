package models

// All returns every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&User{},
		&Setting{},
		&SettingRecord{},
		&SettingRecordTranslation{},
	}
}
