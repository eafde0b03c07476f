// Package service provides the high-level suiup operations: install, set
// default, switch, update, remove and the read-only queries behind show and
// which.
//
// The Orchestrator composes the release catalog, the artifact fetcher, the
// archive extractor and the source builder. It treats the installed store as
// the source of truth and the default store as a pointer derived from it.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/suiup/internal/binary"
	"github.com/ZebulonRouseFrantzich/suiup/internal/catalog"
	"github.com/ZebulonRouseFrantzich/suiup/internal/config"
	"github.com/ZebulonRouseFrantzich/suiup/internal/paths"
	"github.com/ZebulonRouseFrantzich/suiup/internal/platform"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

const (
	// DefaultWalrusBaseURL hosts the standalone walrus downloads.
	DefaultWalrusBaseURL = "https://storage.googleapis.com/mysten-walrus-binaries"

	// BinaryPermissions is the mode given to installed and promoted executables.
	BinaryPermissions = 0o755
)

// ReleaseCatalog lists upstream releases.
type ReleaseCatalog interface {
	ListReleases(ctx context.Context, src catalog.Source) ([]catalog.Release, error)
	ReleaseByTag(ctx context.Context, src catalog.Source, tag string) (catalog.Release, error)
}

// Fetcher downloads a single artifact.
type Fetcher interface {
	Download(ctx context.Context, url, destPath string, opts binary.FetchOptions) (*binary.DownloadResult, error)
}

// Extractor pulls one executable out of a release archive.
type Extractor interface {
	ExtractEntry(archivePath, entryName, destPath string) (bool, error)
}

// Options wires the Orchestrator's collaborators.
type Options struct {
	Layout    paths.Layout
	Platform  *platform.Info
	Catalog   ReleaseCatalog
	Fetcher   Fetcher
	Extractor Extractor
	Builder   binary.Builder
	// WalrusBaseURL overrides DefaultWalrusBaseURL.
	WalrusBaseURL string
	Logger        config.Logger
}

// Orchestrator runs the install and promotion workflows.
type Orchestrator struct {
	layout        paths.Layout
	platform      *platform.Info
	catalog       ReleaseCatalog
	fetcher       Fetcher
	extractor     Extractor
	builder       binary.Builder
	walrusBaseURL string
	logger        config.Logger
}

// New creates an Orchestrator with dependency injection.
func New(opts Options) *Orchestrator {
	base := opts.WalrusBaseURL
	if base == "" {
		base = DefaultWalrusBaseURL
	}
	return &Orchestrator{
		layout:        opts.Layout,
		platform:      opts.Platform,
		catalog:       opts.Catalog,
		fetcher:       opts.Fetcher,
		extractor:     opts.Extractor,
		builder:       opts.Builder,
		walrusBaseURL: strings.TrimRight(base, "/"),
		logger:        config.OrNop(opts.Logger),
	}
}

// Layout returns the directories the orchestrator works in.
func (o *Orchestrator) Layout() paths.Layout {
	return o.layout
}

// loadInstalled reads the installed store fresh for each operation.
func (o *Orchestrator) loadInstalled() (*store.Installed, error) {
	return store.LoadInstalled(o.layout.InstalledFile())
}

func (o *Orchestrator) loadDefaults() (*store.Defaults, error) {
	return store.LoadDefaults(o.layout.DefaultFile())
}

// DefaultPath is where the promoted executable for name lives.
func (o *Orchestrator) DefaultPath(name string) string {
	return filepath.Join(o.layout.DefaultBinDir, o.platform.Executable(name))
}

// versionedName is the version-store file name of an installed binary.
func (o *Orchestrator) versionedName(name, ver string, debug bool) string {
	if debug {
		name += "-debug"
	}
	return o.platform.Executable(name + "-" + ver)
}

// recordPath returns where r's file lives. Records written before paths were
// stored are resolved from the version-store layout.
func (o *Orchestrator) recordPath(r store.Record) string {
	if r.Path != "" {
		return r.Path
	}
	dir := o.layout.ChannelDir(r.Channel)
	if r.Version == version.Nightly {
		dir = filepath.Join(dir, "bin")
	}
	return filepath.Join(dir, o.versionedName(r.Binary, r.Version, r.Debug))
}

func sourceFor(repo string) (catalog.Source, error) {
	src, err := catalog.ParseSource(repo)
	if err != nil {
		return catalog.Source{}, fmt.Errorf("release source: %w", err)
	}
	return src, nil
}
