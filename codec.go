// FILE: confull/codec.go
package confull

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/clbanning/mxj/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Codec encodes a configuration tree to bytes and back. Codecs are pure and
// stateless; the same instance may be used concurrently.
type Codec interface {
	Encode(tree map[string]any) ([]byte, error)
	Decode(data []byte) (map[string]any, error)
}

var codecRegistry = struct {
	mu sync.RWMutex
	m  map[Format]Codec
}{
	m: map[Format]Codec{
		FormatJSON: jsonCodec{},
		FormatTOML: tomlCodec{},
		FormatYAML: yamlCodec{},
		FormatINI:  iniCodec{},
		FormatXML:  xmlCodec{},
	},
}

// RegisterCodec replaces the codec used for a format. Intended for callers
// that need custom renditions (e.g. a different XML element layout).
func RegisterCodec(f Format, c Codec) {
	codecRegistry.mu.Lock()
	defer codecRegistry.mu.Unlock()
	codecRegistry.m[f] = c
}

func codecFor(f Format) (Codec, error) {
	codecRegistry.mu.RLock()
	defer codecRegistry.mu.RUnlock()
	c, ok := codecRegistry.m[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return c, nil
}

// normalizeTree rewrites a decoded tree into the canonical in-memory shape:
// nested nodes are map[string]any, integers are int64, floats are float64.
// Decoders disagree on these (json.Number, yaml's int, toml's int64), and
// cross-format round trips rely on one canonical shape.
func normalizeTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeTree(v)
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[fmt.Sprintf("%v", key)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

// jsonCodec uses the stdlib encoder with two-space indentation; decoding
// goes through UseNumber to preserve integer precision.
type jsonCodec struct{}

func (jsonCodec) Encode(tree map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return append(data, '\n'), nil
}

func (jsonCodec) Decode(data []byte) (map[string]any, error) {
	tree := make(map[string]any)
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&tree); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	return normalizeTree(tree), nil
}

type tomlCodec struct{}

func (tomlCodec) Encode(tree map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
		return nil, fmt.Errorf("toml encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (tomlCodec) Decode(data []byte) (map[string]any, error) {
	tree := make(map[string]any)
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("toml decode: %w", err)
	}
	return normalizeTree(tree), nil
}

type yamlCodec struct{}

func (yamlCodec) Encode(tree map[string]any) ([]byte, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return data, nil
}

func (yamlCodec) Decode(data []byte) (map[string]any, error) {
	tree := make(map[string]any)
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	return normalizeTree(tree), nil
}

// iniCodec maps the tree onto flat INI sections: top-level scalars live in
// the DEFAULT section, deeper nodes become sections named by the dot-joined
// path to their parent. INI has no value types, so everything decodes as a
// string; callers needing typed round trips should pick another format.
type iniCodec struct{}

func (iniCodec) Encode(tree map[string]any) ([]byte, error) {
	file := ini.Empty()

	flat := flattenTree(tree, "")
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths) // deterministic output

	for _, path := range paths {
		segments := splitPath(path)
		section := ini.DefaultSection
		key := segments[0]
		if len(segments) > 1 {
			section = strings.Join(segments[:len(segments)-1], ".")
			key = segments[len(segments)-1]
		}
		if _, err := file.Section(section).NewKey(key, fmt.Sprint(flat[path])); err != nil {
			return nil, fmt.Errorf("ini encode: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("ini encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (iniCodec) Decode(data []byte) (map[string]any, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("ini decode: %w", err)
	}

	tree := make(map[string]any)
	for _, section := range file.Sections() {
		for key, value := range section.KeysHash() {
			segments := []string{key}
			if section.Name() != ini.DefaultSection {
				segments = append(splitPath(section.Name()), key)
			}
			if err := setPath(tree, segments, value, true); err != nil {
				return nil, fmt.Errorf("ini decode: %w", err)
			}
		}
	}
	return tree, nil
}

// xmlCodec wraps the tree in a single implicit <config> root element and
// unwraps it symmetrically. Like INI, XML carries no value types; scalars
// decode as strings.
type xmlCodec struct{}

const xmlRootTag = "config"

func (xmlCodec) Encode(tree map[string]any) ([]byte, error) {
	data, err := mxj.Map(tree).XmlIndent("", "  ", xmlRootTag)
	if err != nil {
		return nil, fmt.Errorf("xml encode: %w", err)
	}
	return append(data, '\n'), nil
}

func (xmlCodec) Decode(data []byte) (map[string]any, error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, fmt.Errorf("xml decode: %w", err)
	}
	root, ok := map[string]any(m)[xmlRootTag]
	if !ok {
		return nil, fmt.Errorf("xml decode: missing <%s> root element", xmlRootTag)
	}
	tree, ok := toStringMap(root)
	if !ok {
		// Self-closing root: an empty document.
		return make(map[string]any), nil
	}
	return normalizeTree(tree), nil
}
