package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

// Default is the promoted (channel, version, debug) for one binary. It is
// stored as a three-element JSON array.
type Default struct {
	Channel string
	Version string
	Debug   bool
}

// MarshalJSON encodes d as [channel, version, debug].
func (d Default) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.Channel, d.Version, d.Debug})
}

// UnmarshalJSON decodes [channel, version, debug].
func (d *Default) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("default entry must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &d.Channel); err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	if err := json.Unmarshal(raw[1], &d.Version); err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if err := json.Unmarshal(raw[2], &d.Debug); err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	return nil
}

// Defaults is the DefaultBinaryStore: exactly one entry per binary name.
type Defaults struct {
	path    string
	entries map[string]Default
}

// LoadDefaults reads the store at path, creating an empty one if absent.
func LoadDefaults(path string) (*Defaults, error) {
	entries := map[string]Default{}
	if err := readDocument(path, &entries, []byte("{}")); err != nil {
		return nil, err
	}
	if entries == nil {
		// A literal null decodes to a nil map. It is as unreadable as
		// malformed JSON and gets the same treatment.
		return nil, apperr.Integrity("cannot parse "+path, errors.New("document is null, want an object"))
	}
	return &Defaults{path: path, entries: entries}, nil
}

// Get returns the default for name.
func (s *Defaults) Get(name string) (Default, bool) {
	d, ok := s.entries[name]
	return d, ok
}

// Set replaces the default for name.
func (s *Defaults) Set(name string, d Default) {
	s.entries[name] = d
}

// Delete drops the default for name and reports whether it existed.
func (s *Defaults) Delete(name string) bool {
	_, ok := s.entries[name]
	delete(s.entries, name)
	return ok
}

// Names returns the binary names with a default, sorted.
func (s *Defaults) Names() []string {
	return slices.Sorted(maps.Keys(s.entries))
}

// Save writes the store in a single atomic replace.
func (s *Defaults) Save() error {
	return writeDocument(s.path, s.entries)
}
