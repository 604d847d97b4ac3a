// FILE: confull/format.go
package confull

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an on-disk configuration encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatINI  Format = "ini"
	FormatXML  Format = "xml"
)

// Formats returns the supported formats in declaration order.
func Formats() []Format {
	return []Format{FormatJSON, FormatTOML, FormatYAML, FormatINI, FormatXML}
}

// ParseFormat converts a string tag to a Format (case-insensitive).
// Returns ErrUnknownFormat for anything outside the supported set.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "toml", "tml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "ini":
		return FormatINI, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: json, toml, yaml, ini, xml)", ErrUnknownFormat, s)
	}
}

// String implements fmt.Stringer.
func (f Format) String() string { return string(f) }

// Ext returns the canonical file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// detectFormat infers the format from a file name's extension.
// Returns false when the extension is missing or unrecognized.
func detectFormat(path string) (Format, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// ensureExtension appends the format's canonical extension when the file
// name has none. Existing extensions are kept as-is.
func ensureExtension(path string, f Format) string {
	if filepath.Ext(path) == "" {
		return path + f.Ext()
	}
	return path
}
