package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"contact_email", true},
		{"a", true},
		{"footer2", true},
		{"", false},
		{"Contact", false},
		{"contact-email", false},
		{"contact email", false},
		{"ünicode", false},
		{strings.Repeat("a", MaxKeyLength), true},
		{strings.Repeat("a", MaxKeyLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKey(tt.key))
		})
	}
}

func TestKeysSetKeepsPosition(t *testing.T) {
	k := NewKeys(
		Definition{Key: "a", Label: "A"},
		Definition{Key: "b", Label: "B"},
	)
	k.Set(Definition{Key: "a", Label: "A2"})
	k.Set(Definition{Key: "c", Label: "C"})

	assert.Equal(t, 3, k.Len())
	assert.Equal(t, []Definition{
		{Key: "a", Label: "A2"},
		{Key: "b", Label: "B"},
		{Key: "c", Label: "C"},
	}, k.All())
}

func TestKeysDelete(t *testing.T) {
	k := NewKeys(Definition{Key: "a"}, Definition{Key: "b"}, Definition{Key: "c"})

	assert.True(t, k.Delete("b"))
	assert.False(t, k.Delete("b"))
	assert.False(t, k.Delete("missing"))

	_, ok := k.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []Definition{{Key: "a"}, {Key: "c"}}, k.All())

	var zero Keys
	assert.False(t, zero.Delete("a"))
}

func TestKeysMarshalJSONKeepsOrder(t *testing.T) {
	k := NewKeys(
		Definition{Key: "zeta", Label: "Z", Bundle: "basic"},
		Definition{Key: "alpha", Label: "A", Bundle: "text", Desc: "first"},
	)

	raw, err := Encode(k)
	require.NoError(t, err)

	assert.Equal(t,
		`{"keys":{"zeta":{"key":"zeta","label":"Z","bundle":"basic","desc":""},`+
			`"alpha":{"key":"alpha","label":"A","bundle":"text","desc":"first"}}}`,
		string(raw))

	var empty Keys

	raw, err = Encode(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys":{}}`, string(raw))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Definition
		wantErr bool
	}{
		{name: "empty input", raw: "", want: []Definition{}},
		{name: "no keys member", raw: `{}`, want: []Definition{}},
		{name: "null keys", raw: `{"keys":null}`, want: []Definition{}},
		{
			name: "object keeps member order",
			raw:  `{"keys":{"b":{"label":"B","bundle":"basic"},"a":{"label":"A","bundle":"text"}}}`,
			want: []Definition{
				{Key: "b", Label: "B", Bundle: "basic"},
				{Key: "a", Label: "A", Bundle: "text"},
			},
		},
		{
			name: "member name wins over key field",
			raw:  `{"keys":{"real":{"key":"stale","label":"R","bundle":"basic"}}}`,
			want: []Definition{{Key: "real", Label: "R", Bundle: "basic"}},
		},
		{
			name: "array of definitions",
			raw:  `{"keys":[{"key":"x","label":"X","bundle":"link"},{"key":"y","label":"Y","bundle":"basic"}]}`,
			want: []Definition{
				{Key: "x", Label: "X", Bundle: "link"},
				{Key: "y", Label: "Y", Bundle: "basic"},
			},
		},
		{name: "scalar keys", raw: `{"keys":"nope"}`, wantErr: true},
		{name: "broken json", raw: `{"keys":{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAggregate)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, keys.All())
		})
	}
}

func TestEncodeDecodeRoundTripKeepsOrder(t *testing.T) {
	in := NewKeys(
		Definition{Key: "c", Label: "C", Bundle: "basic"},
		Definition{Key: "a", Label: "A", Bundle: "link"},
		Definition{Key: "b", Label: "B", Bundle: "text", Desc: "d"},
	)

	raw, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, in.All(), out.All())
}
