package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// DefaultConfigName is the aggregate name used when none is configured.
const DefaultConfigName = "settings.settings"

// ConfigStore persists named configuration aggregates as opaque blobs.
type ConfigStore interface {
	// Load returns the stored value, or a nil slice and no error if the aggregate was never saved.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the stored value atomically.
	Save(ctx context.Context, name string, value []byte) error
}

// RecordStore is the slice of the content record storage reconciliation needs.
type RecordStore interface {
	// Query returns the ids of records of bundle whose settings key equals key.
	Query(ctx context.Context, bundle, key string) ([]uint64, error)
	// Create builds a new unsaved record shell.
	Create(bundle, key string) *models.SettingRecord
	// Save persists rec.
	Save(ctx context.Context, rec *models.SettingRecord) error
}

// aggregate is the stored shape of the registry.
type aggregate struct {
	Keys Keys `json:"keys"`
}

// Registry manages settings key definitions and their backing records.
type Registry struct {
	name    string
	config  ConfigStore
	records RecordStore
}

// New creates a registry stored under the aggregate name.
func New(name string, config ConfigStore, records RecordStore) *Registry {
	if name == "" {
		name = DefaultConfigName
	}

	return &Registry{
		name:    name,
		config:  config,
		records: records,
	}
}

// Name returns the name of the configuration aggregate.
func (r *Registry) Name() string {
	return r.name
}

// ReadAll returns every definition in storage order.
// An unconfigured registry yields an empty mapping.
func (r *Registry) ReadAll(ctx context.Context) (Keys, error) {
	raw, err := r.config.Load(ctx, r.name)
	if err != nil {
		return Keys{}, fmt.Errorf("load %s: %w", r.name, err)
	}

	return Decode(raw)
}

// ReadOne looks up a single definition. The boolean is false when key is not registered.
func (r *Registry) ReadOne(ctx context.Context, key string) (Definition, bool, error) {
	keys, err := r.ReadAll(ctx)
	if err != nil {
		return Definition{}, false, err
	}

	d, ok := keys.Get(key)

	return d, ok, nil
}

// Upsert stores d under d.Key, replacing any previous definition, and reconciles.
// d is expected to be validated by the caller.
func (r *Registry) Upsert(ctx context.Context, d Definition) error {
	keys, err := r.ReadAll(ctx)
	if err != nil {
		return err
	}

	keys.Set(d)

	return r.write(ctx, keys)
}

// Delete removes key from the registry and reconciles. A missing key is not an error.
// Records backing the key are left untouched.
func (r *Registry) Delete(ctx context.Context, key string) error {
	keys, err := r.ReadAll(ctx)
	if err != nil {
		return err
	}

	keys.Delete(key)

	return r.write(ctx, keys)
}

// write saves keys as the whole aggregate and runs reconciliation.
func (r *Registry) write(ctx context.Context, keys Keys) error {
	raw, err := Encode(keys)
	if err != nil {
		return err
	}

	if err = r.config.Save(ctx, r.name, raw); err != nil {
		return fmt.Errorf("save %s: %w", r.name, err)
	}

	_, err = r.Reconcile(ctx)

	return err
}

// Reconcile creates one record for every registered key that has no record of its bundle yet.
// It returns the number of records created. Running it again without registry changes creates none.
func (r *Registry) Reconcile(ctx context.Context) (int, error) {
	keys, err := r.ReadAll(ctx)
	if err != nil {
		return 0, err
	}

	var created int

	for _, d := range keys.All() {
		ids, errQuery := r.records.Query(ctx, d.Bundle, d.Key)
		if errQuery != nil {
			return created, fmt.Errorf("query records for %q: %w", d.Key, errQuery)
		}

		if len(ids) > 0 {
			continue
		}

		rec := r.records.Create(d.Bundle, d.Key)
		if errSave := r.records.Save(ctx, rec); errSave != nil {
			return created, fmt.Errorf("create record for %q: %w", d.Key, errSave)
		}

		created++

		recordsCreated.WithLabelValues(d.Bundle).Inc()

		log.Info().
			Str("key", d.Key).
			Str("bundle", d.Bundle).
			Uint64("record_id", rec.ID).
			Msg("created settings record")
	}

	return created, nil
}

// OnConfigImport reconciles after a bulk configuration import touched the registry aggregate.
func (r *Registry) OnConfigImport(ctx context.Context, names []string) error {
	if !slices.Contains(names, r.name) {
		return nil
	}

	created, err := r.Reconcile(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Str("config", r.name).Msg("reconciled settings records after import")

	return nil
}

// Encode serialises keys into the stored aggregate format.
func Encode(keys Keys) ([]byte, error) {
	raw, err := json.Marshal(aggregate{Keys: keys})
	if err != nil {
		return nil, fmt.Errorf("encode settings aggregate: %w", err)
	}

	return raw, nil
}

// Decode parses a stored aggregate. Empty input yields an empty mapping.
func Decode(raw []byte) (Keys, error) {
	if len(raw) == 0 {
		return Keys{}, nil
	}

	var agg aggregate
	if err := json.Unmarshal(raw, &agg); err != nil {
		return Keys{}, fmt.Errorf("%w: %w", ErrInvalidAggregate, err)
	}

	return agg.Keys, nil
}
