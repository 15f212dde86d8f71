package setting

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// every pooled connection would open its own :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, s := range settings {
		err := db.Create(&s).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "settings.settings",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "settings.settings",
			seedData: []models.Setting{
				{Name: "settings.settings", Value: []byte(`{"keys":{}}`)},
			},
			expectedValue: []byte(`{"keys":{}}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			s, err := Get(context.Background(), tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)
			} else {
				require.NoError(t, err)
				require.NotNil(t, s)
				assert.Equal(t, tc.settingName, s.Name)
				assert.Equal(t, tc.expectedValue, s.Value)
			}
		})
	}
}

func TestSet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := Set(ctx, nil, "a", nil)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Set(ctx, db, "", nil)
	require.ErrorIs(t, err, ErrSettingNameEmpty)

	_, err = Set(ctx, db, "settings.settings", []byte("first"))
	require.NoError(t, err)

	_, err = Set(ctx, db, "settings.settings", []byte("second"))
	require.NoError(t, err)

	var count int64
	db.Model(&models.Setting{}).Where("name = ?", "settings.settings").Count(&count)
	assert.Equal(t, int64(1), count, "set must overwrite, not duplicate")

	s, err := Get(ctx, db, "settings.settings")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), s.Value)
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := GetAll(ctx, nil)
	require.ErrorIs(t, err, ErrDBNil)

	all, err := GetAll(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, all)

	seedSettings(t, db, []models.Setting{
		{Name: "b", Value: []byte("2")},
		{Name: "a", Value: []byte("1")},
	})

	all, err = GetAll(ctx, db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, "b", all[1].Name)
}

func TestDeleteByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.ErrorIs(t, DeleteByName(ctx, nil, "x"), ErrDBNil)
	require.ErrorIs(t, DeleteByName(ctx, db, ""), ErrSettingNameEmpty)
	require.ErrorIs(t, DeleteByName(ctx, db, "missing"), ErrSettingNotFound)

	seedSettings(t, db, []models.Setting{{Name: "gone", Value: []byte("x")}})
	require.NoError(t, DeleteByName(ctx, db, "gone"))

	_, err := Get(ctx, db, "gone")
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := NewStore(db)

	raw, err := store.Load(ctx, "settings.settings")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, store.Save(ctx, "settings.settings", []byte(`{"keys":{}}`)))

	raw, err = store.Load(ctx, "settings.settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys":{}}`, string(raw))
}
