// Package configimport loads and dumps the settings key registry as YAML
// and notifies subscribers after an import wrote configuration aggregates.
//
// An import bypasses Registry.Upsert: the whole aggregate is written in one
// step and subscribers (the registry among them) react to the import event.
package configimport

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.yaml.in/yaml/v3"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
)

// Subscriber reacts to imported configuration aggregates.
type Subscriber interface {
	OnConfigImport(ctx context.Context, names []string) error
}

// Entry is one key definition in an import document.
type Entry struct {
	Key    string `yaml:"key"    validate:"required,max=64,settingskey"`
	Label  string `yaml:"label"  validate:"required,max=64"`
	Bundle string `yaml:"bundle" validate:"required"`
	Desc   string `yaml:"desc"   validate:"required,max=255"`
}

// Document is the YAML layout of an import or export.
type Document struct {
	Keys []Entry `yaml:"keys" validate:"dive"`
}

// Importer writes registry aggregates from YAML documents.
type Importer struct {
	name        string
	store       registry.ConfigStore
	validator   *validator.Validate
	bundles     func(string) bool
	subscribers []Subscriber
}

// NewImporter returns an Importer writing the aggregate name to store.
// knownBundle may be nil to accept every bundle name.
func NewImporter(name string, store registry.ConfigStore, knownBundle func(string) bool) (*Importer, error) {
	if name == "" {
		name = registry.DefaultConfigName
	}

	v := validator.New()
	if err := registry.RegisterValidations(v); err != nil {
		return nil, fmt.Errorf("register validations: %w", err)
	}

	return &Importer{
		name:      name,
		store:     store,
		validator: v,
		bundles:   knownBundle,
	}, nil
}

// Subscribe adds s to the subscribers notified after every import, in registration order.
func (i *Importer) Subscribe(s Subscriber) {
	i.subscribers = append(i.subscribers, s)
}

// Import replaces the registry aggregate with the definitions read from r
// and dispatches the import event. It returns the number of imported keys.
// Repeated keys overwrite earlier ones.
func (i *Importer) Import(ctx context.Context, r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}

	var doc Document
	if err = yaml.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err = i.validator.Struct(doc); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var keys registry.Keys

	for _, e := range doc.Keys {
		if i.bundles != nil && !i.bundles(e.Bundle) {
			return 0, fmt.Errorf("%w: key %q uses %w %q", ErrInvalidDocument, e.Key, ErrUnknownBundle, e.Bundle)
		}

		keys.Set(registry.Definition{Key: e.Key, Label: e.Label, Bundle: e.Bundle, Desc: e.Desc})
	}

	encoded, err := registry.Encode(keys)
	if err != nil {
		return 0, err
	}

	if err = i.store.Save(ctx, i.name, encoded); err != nil {
		return 0, fmt.Errorf("save %s: %w", i.name, err)
	}

	log.Info().Str("config", i.name).Int("keys", keys.Len()).Msg("imported settings keys")

	return keys.Len(), i.Dispatch(ctx, []string{i.name})
}

// Dispatch notifies all subscribers that names were imported.
// It stops at the first failing subscriber.
func (i *Importer) Dispatch(ctx context.Context, names []string) error {
	for _, s := range i.subscribers {
		if err := s.OnConfigImport(ctx, names); err != nil {
			return fmt.Errorf("config import subscriber: %w", err)
		}
	}

	return nil
}

// Export writes the aggregate name stored in store to w as YAML.
func Export(ctx context.Context, name string, store registry.ConfigStore, w io.Writer) error {
	raw, err := store.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	keys, err := registry.Decode(raw)
	if err != nil {
		return err
	}

	doc := Document{Keys: make([]Entry, 0, keys.Len())}
	for _, d := range keys.All() {
		doc.Keys = append(doc.Keys, Entry{Key: d.Key, Label: d.Label, Bundle: d.Bundle, Desc: d.Desc})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd

	if err = enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	return enc.Close() //nolint:wrapcheck
}
