// FILE: confull/format_test.go
package confull

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseFormat tests tag parsing, aliases and rejection
func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"toml", FormatTOML, false},
		{"tml", FormatTOML, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"ini", FormatINI, false},
		{"xml", FormatXML, false},
		{"", "", true},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

// TestDetectFormat tests extension-based inference
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path  string
		want  Format
		found bool
	}{
		{"config.json", FormatJSON, true},
		{"/etc/app/config.YAML", FormatYAML, true},
		{"config.yml", FormatYAML, true},
		{"config", "", false},
		{"config.conf", "", false},
		{"archive.tar.xml", FormatXML, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, ok := detectFormat(tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, f)
			}
		})
	}
}

// TestEnsureExtension tests extension completion
func TestEnsureExtension(t *testing.T) {
	assert.Equal(t, "config.toml", ensureExtension("config", FormatTOML))
	assert.Equal(t, "config.json", ensureExtension("config.json", FormatTOML))
	assert.Equal(t, "/a/b/c.yaml", ensureExtension("/a/b/c", FormatYAML))
}
