// Package transaction provides the crash-safety primitives used when suiup
// mutates shared state: a process-wide command lock, atomic file
// replacement, and a journal for promotions in flight.
package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State represents how far a promotion got.
type State string

const (
	StatePending State = "pending" // journal written, nothing placed yet
	StatePlaced  State = "placed"  // default binary replaced, metadata not yet written
)

const journalPrefix = "promotion-"

// Promotion records one "set default" operation so that a crash between
// placing the file and writing the metadata can be detected later.
type Promotion struct {
	SchemaVersion int       `json:"schema_version"`
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Binary        string    `json:"binary"`
	Channel       string    `json:"channel"`
	Version       string    `json:"version"`
	Debug         bool      `json:"debug"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	State         State     `json:"state"`
}

// NewPromotion creates a pending journal entry.
func NewPromotion(binary, channel, version string, debug bool, source, destination string) *Promotion {
	return &Promotion{
		SchemaVersion: 1,
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Binary:        binary,
		Channel:       channel,
		Version:       version,
		Debug:         debug,
		Source:        source,
		Destination:   destination,
		State:         StatePending,
	}
}

func (p *Promotion) fileName() string {
	return journalPrefix + p.ID + ".json"
}

// Save writes the entry into dir atomically.
func (p *Promotion) Save(dir string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal promotion journal: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	if err := WriteFileAtomic(filepath.Join(dir, p.fileName()), data, 0o600); err != nil {
		return fmt.Errorf("write promotion journal: %w", err)
	}
	return nil
}

// Advance moves the entry to state and persists it.
func (p *Promotion) Advance(dir string, state State) error {
	p.State = state
	return p.Save(dir)
}

// Complete removes the entry; the promotion is fully recorded.
func (p *Promotion) Complete(dir string) error {
	err := os.Remove(filepath.Join(dir, p.fileName()))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove promotion journal: %w", err)
	}
	return nil
}

// Describe summarises the entry for a warning message.
func (p *Promotion) Describe() string {
	name := p.Binary
	if p.Debug {
		name += " (debug)"
	}
	return fmt.Sprintf("%s %s from %s, interrupted while %s at %s",
		name, p.Version, p.Channel, p.State, p.Timestamp.Format(time.RFC3339))
}

// Load reads a journal entry from disk.
func Load(path string) (*Promotion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read promotion journal: %w", err)
	}
	var p Promotion
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal promotion journal %s: %w", filepath.Base(path), err)
	}
	return &p, nil
}

// Interrupted returns every promotion left behind in dir, oldest first.
func Interrupted(dir string) ([]*Promotion, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal directory: %w", err)
	}

	var out []*Promotion
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, journalPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		p, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Discard removes stale entries after they have been reported.
func Discard(dir string, entries []*Promotion) error {
	var errs []error
	for _, p := range entries {
		errs = append(errs, p.Complete(dir))
	}
	return errors.Join(errs...)
}
