package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "S0", `"S0"`},
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"short control escapes", "a\nb\tc", `"a\nb\tc"`},
		{"other control escapes", "a\x01b", `"a\u0001b"`},
		{"line separator kept literal", "a b", "\"a b\""},
		{"nfc normalized", "é", "\"é\""},
		{"int", 42, `42`},
		{"int64", int64(-7), `-7`},
		{"bools", []any{true, false}, `[true,false]`},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
		{"empty string slice", []string{}, `[]`},
		{"empty object", map[string]any{}, `{}`},
		{
			"keys sorted",
			map[string]any{"b": 1, "a": map[string]any{"d": "x", "c": []any{}}},
			`{"a":{"c":[],"d":"x"},"b":1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
		msg  string
	}{
		{"null", nil, "null is forbidden"},
		{"float", 1.5, "floats are forbidden"},
		{"nested null", map[string]any{"a": []any{nil}}, `object["a"]: array[0]: null is forbidden`},
		{"unsupported", struct{}{}, "unsupported type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FF61
	// in UTF-16 but after it in UTF-8.
	obj := map[string]any{"｡": 1, "\U0001F600": 2, "a": 3}
	assert.Equal(t, []string{"a", "\U0001F600", "｡"}, SortedKeys(obj))
}

func TestDigest(t *testing.T) {
	a, err := Digest("genealogy/test/v1", map[string]any{"x": "1", "y": "2"})
	require.NoError(t, err)
	b, err := Digest("genealogy/test/v1", map[string]any{"y": "2", "x": "1"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	other, err := Digest("genealogy/other/v1", map[string]any{"x": "1", "y": "2"})
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	_, err = Digest("genealogy/test/v1", 1.0)
	assert.Error(t, err)
}
