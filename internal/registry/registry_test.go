package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

var errBoom = errors.New("boom")

// memConfig is an in-memory ConfigStore.
type memConfig struct {
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemConfig() *memConfig {
	return &memConfig{data: map[string][]byte{}}
}

func (m *memConfig) Load(_ context.Context, name string) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}

	return m.data[name], nil
}

func (m *memConfig) Save(_ context.Context, name string, value []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saves++
	m.data[name] = append([]byte(nil), value...)

	return nil
}

// memRecords is an in-memory RecordStore.
type memRecords struct {
	records  []models.SettingRecord
	queryErr error
	saveErr  error
}

func (m *memRecords) Query(_ context.Context, bundle, key string) ([]uint64, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	var ids []uint64

	for _, r := range m.records {
		if r.Type == bundle && r.SettingsKey == key {
			ids = append(ids, r.ID)
		}
	}

	return ids, nil
}

func (m *memRecords) Create(bundle, key string) *models.SettingRecord {
	return &models.SettingRecord{Type: bundle, SettingsKey: key, DefaultLangcode: "en"}
}

func (m *memRecords) Save(_ context.Context, rec *models.SettingRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	rec.ID = uint64(len(m.records) + 1)
	m.records = append(m.records, *rec)

	return nil
}

func (m *memRecords) count(bundle, key string) int {
	ids, _ := m.Query(context.Background(), bundle, key)

	return len(ids)
}

func newTestRegistry() (*Registry, *memConfig, *memRecords) {
	cfg := newMemConfig()
	recs := &memRecords{}

	return New("", cfg, recs), cfg, recs
}

var contactEmail = Definition{
	Key:    "contact_email",
	Label:  "Contact email",
	Bundle: "basic",
	Desc:   "Shown in the footer",
}

func TestNewDefaultsName(t *testing.T) {
	r, _, _ := newTestRegistry()
	assert.Equal(t, DefaultConfigName, r.Name())

	r = New("custom.settings", newMemConfig(), &memRecords{})
	assert.Equal(t, "custom.settings", r.Name())
}

func TestReadAllUnconfigured(t *testing.T) {
	r, _, _ := newTestRegistry()

	keys, err := r.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, keys.Len())
	assert.Empty(t, keys.All())
}

func TestReadOne(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry()

	_, ok, err := r.ReadOne(ctx, "contact_email")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Upsert(ctx, contactEmail))

	got, ok, err := r.ReadOne(ctx, "contact_email")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, contactEmail, got)
}

func TestUpsertCreatesExactlyOneRecord(t *testing.T) {
	ctx := context.Background()
	r, _, recs := newTestRegistry()

	require.NoError(t, r.Upsert(ctx, contactEmail))

	require.Len(t, recs.records, 1)
	assert.Equal(t, "basic", recs.records[0].Type)
	assert.Equal(t, "contact_email", recs.records[0].SettingsKey)

	// upserting again with new metadata does not add another record
	changed := contactEmail
	changed.Label = "Email"
	require.NoError(t, r.Upsert(ctx, changed))
	assert.Equal(t, 1, recs.count("basic", "contact_email"))

	got, ok, err := r.ReadOne(ctx, "contact_email")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Email", got.Label)
}

func TestUpsertExistingRecordIsReused(t *testing.T) {
	ctx := context.Background()
	r, _, recs := newTestRegistry()
	recs.records = []models.SettingRecord{{ID: 7, Type: "basic", SettingsKey: "contact_email"}}

	require.NoError(t, r.Upsert(ctx, contactEmail))

	require.Len(t, recs.records, 1)
	assert.Equal(t, uint64(7), recs.records[0].ID)
}

func TestUpsertBundleChangeCreatesRecordOfNewBundle(t *testing.T) {
	ctx := context.Background()
	r, _, recs := newTestRegistry()

	require.NoError(t, r.Upsert(ctx, contactEmail))

	moved := contactEmail
	moved.Bundle = "text"
	require.NoError(t, r.Upsert(ctx, moved))

	assert.Equal(t, 1, recs.count("basic", "contact_email"), "old record is kept")
	assert.Equal(t, 1, recs.count("text", "contact_email"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r, _, recs := newTestRegistry()

	require.NoError(t, r.Upsert(ctx, contactEmail))
	require.NoError(t, r.Delete(ctx, "contact_email"))

	_, ok, err := r.ReadOne(ctx, "contact_email")
	require.NoError(t, err)
	assert.False(t, ok)

	// records survive the removal of their key
	assert.Equal(t, 1, recs.count("basic", "contact_email"))
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	r, cfg, recs := newTestRegistry()

	footer := Definition{Key: "footer", Label: "Footer", Bundle: "text"}
	require.NoError(t, r.Upsert(ctx, contactEmail))
	require.NoError(t, r.Upsert(ctx, footer))

	before, err := r.ReadAll(ctx)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "does_not_exist"))

	after, err := r.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.All(), after.All())
	assert.Len(t, recs.records, 2)
	assert.NotEmpty(t, cfg.data[DefaultConfigName])
}

func TestReplayIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistry()

	ops := []struct {
		del bool
		def Definition
	}{
		{def: Definition{Key: "a", Label: "A1", Bundle: "basic"}},
		{def: Definition{Key: "b", Label: "B1", Bundle: "text"}},
		{def: Definition{Key: "a", Label: "A2", Bundle: "basic"}},
		{del: true, def: Definition{Key: "b"}},
		{def: Definition{Key: "c", Label: "C1", Bundle: "link"}},
		{def: Definition{Key: "b", Label: "B2", Bundle: "basic"}},
		{del: true, def: Definition{Key: "x"}},
	}

	for _, op := range ops {
		if op.del {
			require.NoError(t, r.Delete(ctx, op.def.Key))
			continue
		}

		require.NoError(t, r.Upsert(ctx, op.def))
	}

	keys, err := r.ReadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []Definition{
		{Key: "a", Label: "A2", Bundle: "basic"},
		{Key: "c", Label: "C1", Bundle: "link"},
		{Key: "b", Label: "B2", Bundle: "basic"},
	}, keys.All())
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	cfg := newMemConfig()
	recs := &memRecords{records: []models.SettingRecord{{ID: 1, Type: "basic", SettingsKey: "site_name"}}}
	r := New("", cfg, recs)

	raw, err := Encode(NewKeys(
		Definition{Key: "site_name", Label: "Site name", Bundle: "basic"},
		Definition{Key: "footer", Label: "Footer", Bundle: "text"},
		Definition{Key: "help", Label: "Help", Bundle: "link"},
	))
	require.NoError(t, err)
	require.NoError(t, cfg.Save(ctx, DefaultConfigName, raw))

	created, err := r.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, recs.records, 3)

	// idempotent
	created, err = r.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, recs.records, 3)
}

func TestReconcileEmptyRegistry(t *testing.T) {
	r, _, recs := newTestRegistry()

	created, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, recs.records)
}

func TestErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("load", func(t *testing.T) {
		r, cfg, _ := newTestRegistry()
		cfg.loadErr = errBoom

		_, err := r.ReadAll(ctx)
		require.ErrorIs(t, err, errBoom)

		_, _, err = r.ReadOne(ctx, "a")
		require.ErrorIs(t, err, errBoom)

		require.ErrorIs(t, r.Upsert(ctx, contactEmail), errBoom)
		require.ErrorIs(t, r.Delete(ctx, "a"), errBoom)
	})

	t.Run("save", func(t *testing.T) {
		r, cfg, recs := newTestRegistry()
		cfg.saveErr = errBoom

		require.ErrorIs(t, r.Upsert(ctx, contactEmail), errBoom)
		assert.Empty(t, recs.records, "no reconcile after a failed save")
	})

	t.Run("record query", func(t *testing.T) {
		r, _, recs := newTestRegistry()
		recs.queryErr = errBoom

		require.ErrorIs(t, r.Upsert(ctx, contactEmail), errBoom)
	})

	t.Run("record save", func(t *testing.T) {
		r, _, recs := newTestRegistry()
		recs.saveErr = errBoom

		require.ErrorIs(t, r.Upsert(ctx, contactEmail), errBoom)

		// the definition itself was stored before reconciliation failed
		_, ok, err := r.ReadOne(ctx, contactEmail.Key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("corrupt aggregate", func(t *testing.T) {
		r, cfg, _ := newTestRegistry()
		cfg.data[DefaultConfigName] = []byte(`{"keys": 42}`)

		_, err := r.ReadAll(ctx)
		require.ErrorIs(t, err, ErrInvalidAggregate)
	})
}

func TestOnConfigImport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		names       []string
		wantRecords int
	}{
		{name: "registry aggregate imported", names: []string{"system.site", DefaultConfigName}, wantRecords: 1},
		{name: "unrelated aggregates only", names: []string{"system.site"}, wantRecords: 0},
		{name: "nothing imported", names: nil, wantRecords: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cfg, recs := newTestRegistry()

			// simulate an import that wrote the aggregate without going through Upsert
			raw, err := Encode(NewKeys(contactEmail))
			require.NoError(t, err)
			cfg.data[DefaultConfigName] = raw

			require.NoError(t, r.OnConfigImport(ctx, tt.names))
			assert.Len(t, recs.records, tt.wantRecords)
		})
	}
}

func TestOnConfigImportError(t *testing.T) {
	r, cfg, _ := newTestRegistry()
	cfg.loadErr = errBoom

	require.ErrorIs(t, r.OnConfigImport(context.Background(), []string{DefaultConfigName}), errBoom)
}
