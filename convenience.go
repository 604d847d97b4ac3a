// File: confull/convenience.go
package confull

import (
	"encoding/json"
	"fmt"
	"io"
)

// ToMap returns the full tree as a detached deep copy. Mutating the result
// does not affect the store.
func (s *Store) ToMap() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.tree)
}

// ToJSON renders the tree as indented JSON regardless of the backing
// format. Handy for debugging and for the CLI's show command.
func (s *Store) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s.ToMap(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config to JSON: %w", err)
	}
	return string(data), nil
}

// ToText renders the tree in the store's configured format, exactly as a
// plaintext flush would write it (encryption excluded).
func (s *Store) ToText() (string, error) {
	s.mu.RLock()
	format := s.format
	s.mu.RUnlock()

	codec, err := codecFor(format)
	if err != nil {
		return "", err
	}
	data, err := codec.Encode(s.ToMap())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Dump writes the ToText rendition to out.
func (s *Store) Dump(out io.Writer) error {
	text, err := s.ToText()
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}
