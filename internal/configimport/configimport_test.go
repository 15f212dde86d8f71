package configimport

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
)

type memStore struct {
	data    map[string][]byte
	saveErr error
}

func (m *memStore) Load(_ context.Context, name string) ([]byte, error) {
	return m.data[name], nil
}

func (m *memStore) Save(_ context.Context, name string, value []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.data[name] = value

	return nil
}

type recordingSubscriber struct {
	calls [][]string
	err   error
	order *[]string
	id    string
}

func (r *recordingSubscriber) OnConfigImport(_ context.Context, names []string) error {
	r.calls = append(r.calls, names)
	if r.order != nil {
		*r.order = append(*r.order, r.id)
	}

	return r.err
}

// countingRecords is a RecordStore remembering which (bundle, key) pairs have a record.
type countingRecords struct {
	saved int
	seen  map[string]uint64
}

func (c *countingRecords) Query(_ context.Context, bundle, key string) ([]uint64, error) {
	if id, ok := c.seen[bundle+"/"+key]; ok {
		return []uint64{id}, nil
	}

	return nil, nil
}

func (c *countingRecords) Create(bundle, key string) *models.SettingRecord {
	return &models.SettingRecord{Type: bundle, SettingsKey: key}
}

func (c *countingRecords) Save(_ context.Context, rec *models.SettingRecord) error {
	if c.seen == nil {
		c.seen = map[string]uint64{}
	}

	c.saved++
	rec.ID = uint64(c.saved)
	c.seen[rec.Type+"/"+rec.SettingsKey] = rec.ID

	return nil
}

const validDoc = `
keys:
  - key: contact_email
    label: Contact email
    bundle: basic
    desc: Shown in the footer
  - key: help_link
    label: Help
    bundle: link
    desc: Link to the help center
  - key: contact_email
    label: E-mail
    bundle: basic
    desc: Overwrites the first entry
`

func knownBundles(name string) bool {
	return name == "basic" || name == "text" || name == "link"
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := &memStore{data: map[string][]byte{}}

	imp, err := NewImporter("", store, knownBundles)
	require.NoError(t, err)

	sub := &recordingSubscriber{}
	imp.Subscribe(sub)

	n, err := imp.Import(ctx, strings.NewReader(validDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := registry.Decode(store.data[registry.DefaultConfigName])
	require.NoError(t, err)
	assert.Equal(t, []registry.Definition{
		{Key: "contact_email", Label: "E-mail", Bundle: "basic", Desc: "Overwrites the first entry"},
		{Key: "help_link", Label: "Help", Bundle: "link", Desc: "Link to the help center"},
	}, keys.All())

	require.Len(t, sub.calls, 1)
	assert.Equal(t, []string{registry.DefaultConfigName}, sub.calls[0])
}

func TestImportInvalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "not yaml", doc: "keys: [", wantErr: ErrInvalidDocument},
		{
			name:    "bad key charset",
			doc:     "keys:\n  - {key: Contact-Email, label: L, bundle: basic, desc: D}\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "missing label",
			doc:     "keys:\n  - {key: contact_email, bundle: basic, desc: D}\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "label too long",
			doc:     "keys:\n  - {key: a, label: " + strings.Repeat("x", registry.MaxLabelLength+1) + ", bundle: basic, desc: D}\n",
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "unknown bundle",
			doc:     "keys:\n  - {key: a, label: A, bundle: gallery, desc: D}\n",
			wantErr: ErrUnknownBundle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{data: map[string][]byte{}}

			imp, err := NewImporter("", store, knownBundles)
			require.NoError(t, err)

			sub := &recordingSubscriber{}
			imp.Subscribe(sub)

			_, err = imp.Import(context.Background(), strings.NewReader(tt.doc))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.data, "nothing written")
			assert.Empty(t, sub.calls, "no event dispatched")
		})
	}
}

func TestImportSaveError(t *testing.T) {
	boom := errors.New("boom")
	store := &memStore{data: map[string][]byte{}, saveErr: boom}

	imp, err := NewImporter("", store, nil)
	require.NoError(t, err)

	_, err = imp.Import(context.Background(), strings.NewReader(validDoc))
	require.ErrorIs(t, err, boom)
}

func TestDispatchOrderAndError(t *testing.T) {
	var order []string

	boom := errors.New("boom")
	first := &recordingSubscriber{id: "first", order: &order}
	failing := &recordingSubscriber{id: "failing", order: &order, err: boom}
	last := &recordingSubscriber{id: "last", order: &order}

	imp, err := NewImporter("", &memStore{data: map[string][]byte{}}, nil)
	require.NoError(t, err)
	imp.Subscribe(first)
	imp.Subscribe(failing)
	imp.Subscribe(last)

	err = imp.Dispatch(context.Background(), []string{"system.site"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "failing"}, order)
	assert.Empty(t, last.calls)
}

func TestImportTriggersRegistryReconcile(t *testing.T) {
	ctx := context.Background()
	store := &memStore{data: map[string][]byte{}}
	recs := &countingRecords{}
	reg := registry.New("", store, recs)

	imp, err := NewImporter(reg.Name(), store, nil)
	require.NoError(t, err)
	imp.Subscribe(reg)

	_, err = imp.Import(ctx, strings.NewReader(validDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, recs.saved)

	// importing the same document again creates nothing new
	_, err = imp.Import(ctx, strings.NewReader(validDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, recs.saved)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	store := &memStore{data: map[string][]byte{}}

	var out bytes.Buffer
	require.NoError(t, Export(ctx, registry.DefaultConfigName, store, &out))
	assert.Equal(t, "keys: []\n", out.String())

	imp, err := NewImporter("", store, nil)
	require.NoError(t, err)
	_, err = imp.Import(ctx, strings.NewReader(validDoc))
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, Export(ctx, registry.DefaultConfigName, store, &out))

	// the export is a valid import document
	again := &memStore{data: map[string][]byte{}}
	imp2, err := NewImporter("", again, nil)
	require.NoError(t, err)

	n, err := imp2.Import(ctx, bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, store.data[registry.DefaultConfigName], again.data[registry.DefaultConfigName])
}
