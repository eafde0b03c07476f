package store

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

// Record is one installed (binary, channel, version, debug) combination.
type Record struct {
	Binary  string `json:"binary_name"`
	Channel string `json:"network_release"`
	Version string `json:"version"`
	Debug   bool   `json:"debug"`
	Path    string `json:"path,omitempty"`
}

// Key identifies a record for idempotency checks, ignoring the path.
type Key struct {
	Binary  string
	Channel string
	Version string
	Debug   bool
}

// Key returns the record's identity.
func (r Record) Key() Key {
	return Key{Binary: r.Binary, Channel: r.Channel, Version: r.Version, Debug: r.Debug}
}

func (r Record) String() string {
	if r.Debug {
		return fmt.Sprintf("%s-%s (debug build)", r.Binary, r.Version)
	}
	return fmt.Sprintf("%s-%s", r.Binary, r.Version)
}

type installedDocument struct {
	Binaries *[]Record `json:"binaries"`
}

// Installed is the InstalledBinaryStore.
type Installed struct {
	path    string
	records []Record
}

// LoadInstalled reads the store at path, creating an empty one if absent.
func LoadInstalled(path string) (*Installed, error) {
	var doc installedDocument
	if err := readDocument(path, &doc, []byte(`{"binaries": []}`)); err != nil {
		return nil, err
	}
	if doc.Binaries == nil {
		return nil, apperr.Integrity("cannot parse "+path, errors.New(`missing "binaries" list`))
	}
	return &Installed{path: path, records: *doc.Binaries}, nil
}

// Path returns the backing file.
func (s *Installed) Path() string {
	return s.path
}

// Records returns a copy of every record in insertion order.
func (s *Installed) Records() []Record {
	return slices.Clone(s.records)
}

// Add appends r unless an identical record exists. It reports whether the
// store changed.
func (s *Installed) Add(r Record) bool {
	if slices.Contains(s.records, r) {
		return false
	}
	s.records = append(s.records, r)
	return true
}

// Find returns the record with key k.
func (s *Installed) Find(k Key) (Record, bool) {
	for _, r := range s.records {
		if r.Key() == k {
			return r, true
		}
	}
	return Record{}, false
}

// Has reports whether a record with key k exists.
func (s *Installed) Has(k Key) bool {
	_, ok := s.Find(k)
	return ok
}

// ForBinary returns every record of the named binary.
func (s *Installed) ForBinary(name string) []Record {
	var out []Record
	for _, r := range s.records {
		if r.Binary == name {
			out = append(out, r)
		}
	}
	return out
}

// Versions returns the versions installed for (name, channel, debug).
func (s *Installed) Versions(name, channel string, debug bool) []string {
	var out []string
	for _, r := range s.records {
		if r.Binary == name && r.Channel == channel && r.Debug == debug {
			out = append(out, r.Version)
		}
	}
	return out
}

// RemoveBinary drops every record of the named binary and returns them.
func (s *Installed) RemoveBinary(name string) []Record {
	var removed []Record
	s.records = slices.DeleteFunc(s.records, func(r Record) bool {
		if r.Binary == name {
			removed = append(removed, r)
			return true
		}
		return false
	})
	return removed
}

// Save writes the store in a single atomic replace.
func (s *Installed) Save() error {
	records := s.records
	if records == nil {
		records = []Record{}
	}
	return writeDocument(s.path, installedDocument{Binaries: &records})
}
