// FILE: confull/codec_test.go
package confull

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTypedRoundTrip verifies JSON, TOML and YAML preserve the canonical
// value types through an encode/decode cycle
func TestTypedRoundTrip(t *testing.T) {
	tree := map[string]any{
		"name":  "confull",
		"port":  int64(8080),
		"ratio": 0.75,
		"debug": true,
		"server": map[string]any{
			"host": "localhost",
			"tls": map[string]any{
				"enabled": false,
			},
		},
		"tags": []any{"a", "b"},
	}

	for _, format := range []Format{FormatJSON, FormatTOML, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			codec, err := codecFor(format)
			require.NoError(t, err)

			data, err := codec.Encode(tree)
			require.NoError(t, err)

			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tree, decoded)
		})
	}
}

// TestStringRoundTrip verifies INI and XML preserve structure for
// string-valued trees (neither format carries value types)
func TestStringRoundTrip(t *testing.T) {
	tree := map[string]any{
		"name": "confull",
		"server": map[string]any{
			"host": "localhost",
			"tls": map[string]any{
				"enabled": "true",
			},
		},
	}

	for _, format := range []Format{FormatINI, FormatXML} {
		t.Run(string(format), func(t *testing.T) {
			codec, err := codecFor(format)
			require.NoError(t, err)

			data, err := codec.Encode(tree)
			require.NoError(t, err)

			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tree, decoded)
		})
	}
}

// TestEmptyTree verifies every codec handles an empty tree both ways
func TestEmptyTree(t *testing.T) {
	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			codec, err := codecFor(format)
			require.NoError(t, err)

			data, err := codec.Encode(map[string]any{})
			require.NoError(t, err)

			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Empty(t, decoded)
		})
	}
}

// TestNormalizeValue tests canonicalization of decoder-specific shapes
func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"Int", 42, int64(42)},
		{"Int32", int32(42), int64(42)},
		{"Uint", uint(42), int64(42)},
		{"Float32", float32(1.5), float64(1.5)},
		{"Float64", 1.5, 1.5},
		{"String", "x", "x"},
		{"Bool", true, true},
		{"AnyKeyedMap", map[any]any{"k": 1}, map[string]any{"k": int64(1)}},
		{"SliceElements", []any{1, "x"}, []any{int64(1), "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}

// TestINILayout verifies the section layout: top-level scalars in the
// default section, nested paths as dot-joined section names
func TestINILayout(t *testing.T) {
	tree := map[string]any{
		"debug": "true",
		"server": map[string]any{
			"http": map[string]any{"port": "8080"},
		},
	}

	data, err := iniCodec{}.Encode(tree)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "debug")
	assert.Contains(t, text, "[server.http]")
	assert.Contains(t, text, "port")
}

// TestXMLRoot verifies the implicit root element and empty-document decode
func TestXMLRoot(t *testing.T) {
	t.Run("RootElement", func(t *testing.T) {
		data, err := xmlCodec{}.Encode(map[string]any{"name": "confull"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "<config>"))
	})

	t.Run("MissingRoot", func(t *testing.T) {
		_, err := xmlCodec{}.Decode([]byte("<other><a>1</a></other>"))
		assert.Error(t, err)
	})

	t.Run("SelfClosingRoot", func(t *testing.T) {
		decoded, err := xmlCodec{}.Decode([]byte("<config/>"))
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})
}

// TestCodecRegistry tests lookup and replacement
func TestCodecRegistry(t *testing.T) {
	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := codecFor(Format("msgpack"))
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("AllFormatsRegistered", func(t *testing.T) {
		for _, format := range Formats() {
			_, err := codecFor(format)
			assert.NoError(t, err, format)
		}
	})
}
