package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// MaxKeyLength, MaxLabelLength and MaxDescLength are the field limits enforced by the admin forms.
const (
	MaxKeyLength   = 64
	MaxLabelLength = 64
	MaxDescLength  = 255
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidKey reports whether key only contains lowercase letters, digits and underscores
// and fits into MaxKeyLength.
func ValidKey(key string) bool {
	return len(key) <= MaxKeyLength && keyPattern.MatchString(key)
}

// Definition is the metadata registered for one settings key.
type Definition struct {
	Key    string `json:"key"    yaml:"key"`
	Label  string `json:"label"  yaml:"label"`
	Bundle string `json:"bundle" yaml:"bundle"`
	Desc   string `json:"desc"   yaml:"desc"`
}

// Keys is an insertion ordered mapping of key to Definition.
// The zero value is an empty mapping ready to use.
type Keys struct {
	order []string
	items map[string]Definition
}

// NewKeys builds a mapping from defs. Later duplicates overwrite earlier ones in place.
func NewKeys(defs ...Definition) Keys {
	var k Keys
	for _, d := range defs {
		k.Set(d)
	}

	return k
}

// Set inserts d or replaces the definition stored under d.Key.
// A replaced definition keeps its position.
func (k *Keys) Set(d Definition) {
	if k.items == nil {
		k.items = make(map[string]Definition)
	}

	if _, ok := k.items[d.Key]; !ok {
		k.order = append(k.order, d.Key)
	}

	k.items[d.Key] = d
}

// Delete removes key and reports whether it was present.
func (k *Keys) Delete(key string) bool {
	if _, ok := k.items[key]; !ok {
		return false
	}

	delete(k.items, key)

	for i, name := range k.order {
		if name == key {
			k.order = append(k.order[:i], k.order[i+1:]...)
			break
		}
	}

	return true
}

// Get returns the definition stored under key.
func (k *Keys) Get(key string) (Definition, bool) {
	d, ok := k.items[key]

	return d, ok
}

// Len returns the number of definitions.
func (k *Keys) Len() int {
	return len(k.order)
}

// All returns the definitions in storage order.
func (k *Keys) All() []Definition {
	out := make([]Definition, 0, len(k.order))
	for _, name := range k.order {
		out = append(out, k.items[name])
	}

	return out
}

// MarshalJSON encodes the mapping as a JSON object in storage order.
func (k Keys) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, name := range k.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyJSON, err := json.Marshal(name)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		defJSON, err := json.Marshal(k.items[name])
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(defJSON)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping member order.
// A JSON array of definitions and null are accepted as well.
func (k *Keys) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode keys: %w", err)
	}

	out := Keys{}

	switch tok {
	case nil:
		*k = out
		return nil
	case json.Delim('['):
		for dec.More() {
			var d Definition
			if err = dec.Decode(&d); err != nil {
				return fmt.Errorf("decode keys: %w", err)
			}

			out.Set(d)
		}
	case json.Delim('{'):
		for dec.More() {
			if tok, err = dec.Token(); err != nil {
				return fmt.Errorf("decode keys: %w", err)
			}

			name, _ := tok.(string)

			var d Definition
			if err = dec.Decode(&d); err != nil {
				return fmt.Errorf("decode keys %q: %w", name, err)
			}

			if name != "" {
				d.Key = name
			}

			out.Set(d)
		}
	default:
		return fmt.Errorf("decode keys: %w: unexpected token %v", ErrInvalidAggregate, tok)
	}

	if _, err = dec.Token(); err != nil {
		return fmt.Errorf("decode keys: %w", err)
	}

	*k = out

	return nil
}
