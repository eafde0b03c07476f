package service

import (
	"cmp"
	"os"
	"slices"

	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

// DefaultEntry is one promoted binary as shown by "default get" and "show".
type DefaultEntry struct {
	Name    string
	Default store.Default
	Path    string
	// Present is false when the default file was deleted out-of-band.
	Present bool
}

// Status is the data behind "suiup show".
type Status struct {
	Defaults  []DefaultEntry
	Installed []store.Record
}

// Defaults returns the promoted binaries sorted by name. Entries whose file
// has disappeared are still returned, flagged as not present.
func (o *Orchestrator) Defaults() ([]DefaultEntry, error) {
	defaults, err := o.loadDefaults()
	if err != nil {
		return nil, err
	}
	var out []DefaultEntry
	for _, name := range defaults.Names() {
		d, _ := defaults.Get(name)
		path := o.DefaultPath(name)
		_, statErr := os.Stat(path)
		out = append(out, DefaultEntry{Name: name, Default: d, Path: path, Present: statErr == nil})
	}
	return out, nil
}

// Show returns the default and installed binaries. Installed records are
// ordered by name, channel and ascending version.
func (o *Orchestrator) Show() (*Status, error) {
	defaults, err := o.Defaults()
	if err != nil {
		return nil, err
	}
	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}

	records := installed.Records()
	slices.SortStableFunc(records, func(a, b store.Record) int {
		return cmp.Or(
			cmp.Compare(a.Binary, b.Binary),
			cmp.Compare(a.Channel, b.Channel),
			version.Compare(a.Version, b.Version),
		)
	})
	return &Status{Defaults: defaults, Installed: records}, nil
}

// Which returns the directory promoted binaries are copied to.
func (o *Orchestrator) Which() string {
	return o.layout.DefaultBinDir
}
