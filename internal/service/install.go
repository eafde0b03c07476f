package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/binary"
	"github.com/ZebulonRouseFrantzich/suiup/internal/catalog"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

// InstallRequest contains the parameters for installing one binary.
type InstallRequest struct {
	Spec spec.BinarySpec
	// Force re-downloads standalone binaries that are already recorded.
	Force bool
}

// InstallResult describes the outcome of an install.
type InstallResult struct {
	Record store.Record
	// AlreadyInstalled is set when the request was a no-op.
	AlreadyInstalled bool
	// Verified is how the downloaded artifact was checked, if it was downloaded.
	Verified binary.VerificationMethod
}

// Install installs the binary described by req.Spec and records it.
//
// A combination that is already recorded is reported as installed without any
// network access, except for nightly builds and forced standalone refreshes.
func (o *Orchestrator) Install(ctx context.Context, req InstallRequest) (*InstallResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}

	// 1. Load the installed store. A corrupt store stops everything here.
	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}

	// 2. Fetch or build according to the strategy
	var result *InstallResult
	switch st := req.Spec.Strategy().(type) {
	case spec.NightlyStrategy:
		result, err = o.installNightly(ctx, req.Spec, st)
	case spec.StandaloneStrategy:
		result, err = o.installStandalone(ctx, installed, req)
	case spec.InstallerStrategy:
		result, err = o.installFromCatalog(ctx, installed, req.Spec, st)
	case spec.ReleaseStrategy:
		result, err = o.installRelease(ctx, installed, req.Spec, st)
	default:
		return nil, fmt.Errorf("unsupported install strategy %T", st)
	}
	if err != nil {
		return nil, err
	}
	if result.AlreadyInstalled {
		o.logger.Debug("already installed", "binary", result.Record.Binary, "channel", result.Record.Channel, "version", result.Record.Version)
		return result, nil
	}

	// 3. Record the install
	if !installed.Has(result.Record.Key()) {
		installed.Add(result.Record)
		if err := installed.Save(); err != nil {
			return nil, fmt.Errorf("save installed binaries: %w", err)
		}
	}
	o.logger.Info("installed binary", "binary", result.Record.Binary, "channel", result.Record.Channel,
		"version", result.Record.Version, "debug", result.Record.Debug, "path", result.Record.Path)
	return result, nil
}

func alreadyInstalled(r store.Record) *InstallResult {
	return &InstallResult{Record: r, AlreadyInstalled: true}
}

// installRelease installs a catalog release: resolve the version, pick the
// platform asset, download and verify it, then unpack the executable into
// the channel directory and record it.
func (o *Orchestrator) installRelease(ctx context.Context, installed *store.Installed, s spec.BinarySpec, st spec.ReleaseStrategy) (*InstallResult, error) {
	src, err := sourceFor(st.Repo)
	if err != nil {
		return nil, err
	}

	key := store.Key{Binary: s.Name(), Channel: s.Channel, Version: version.Normalize(s.Version), Debug: s.Debug}
	if key.Version != "" {
		if r, ok := installed.Find(key); ok {
			return alreadyInstalled(r), nil
		}
	}

	releases, err := o.catalog.ListReleases(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("list %s releases: %w", src, err)
	}

	var rel catalog.Release
	if key.Version != "" {
		rel, err = o.findRelease(ctx, src, releases, s, key.Version)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		rel, key.Version, ok = catalog.LatestForChannel(releases, s.Channel)
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("No release found for %s on %s", s.Name(), s.Channel), "")
		}
		if r, ok := installed.Find(key); ok {
			return alreadyInstalled(r), nil
		}
	}

	asset, err := catalog.SelectAsset(rel, o.platform.ReleaseOS(), o.platform.ReleaseArch())
	if err != nil {
		return nil, err
	}
	if v, ok := version.FromAssetName(asset.Name); ok {
		key.Version = v
	}

	archive := filepath.Join(o.layout.ReleasesDir(), asset.Name)
	var opts binary.FetchOptions
	if companion, ok := rel.Companion(asset); ok {
		opts.ChecksumURL = companion.URL
	}
	o.logger.Debug("downloading release archive", "asset", asset.Name, "release", rel.TagName)
	dl, err := o.fetcher.Download(ctx, asset.URL, archive, opts)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", asset.Name, err)
	}

	entry := s.Name()
	if s.Debug {
		entry += "-debug"
	}
	entry = o.platform.Executable(entry)
	dest := filepath.Join(o.layout.ChannelDir(key.Channel), o.versionedName(key.Binary, key.Version, key.Debug))
	found, err := o.extractor.ExtractEntry(archive, entry, dest)
	if err != nil {
		return nil, fmt.Errorf("extract %s from %s: %w", entry, asset.Name, err)
	}
	if !found {
		return nil, apperr.NotFound(fmt.Sprintf("%s not found in %s", entry, asset.Name), "")
	}

	return &InstallResult{
		Record:   store.Record{Binary: key.Binary, Channel: key.Channel, Version: key.Version, Debug: key.Debug, Path: dest},
		Verified: dl.Verified,
	}, nil
}

// findRelease locates the release carrying <channel>-<ver>. The listing is
// searched first, then the tag is looked up directly. When neither has it,
// the error names the other channels that do publish ver.
func (o *Orchestrator) findRelease(ctx context.Context, src catalog.Source, releases []catalog.Release, s spec.BinarySpec, ver string) (catalog.Release, error) {
	if rel, ok := catalog.FindByVersion(releases, s.Channel, ver); ok {
		return rel, nil
	}

	tag := s.Channel + "-" + ver
	rel, err := o.catalog.ReleaseByTag(ctx, src, tag)
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return catalog.Release{}, fmt.Errorf("look up release %s: %w", tag, err)
	}

	msg := fmt.Sprintf("Release %s not found for %s", tag, s.Name())
	hint := fmt.Sprintf("Run `suiup install %s@%s` to install the latest %s release", s.Name(), s.Channel, s.Channel)
	if alts := catalog.ChannelsWithVersion(releases, spec.Channels, s.Channel, ver); len(alts) > 0 {
		msg += fmt.Sprintf(". Version %s is available on: %s", ver, strings.Join(alts, ", "))
		hint = fmt.Sprintf("Try `suiup install %s@%s-%s`", s.Name(), alts[0], ver)
	}
	return catalog.Release{}, apperr.NotFound(msg, hint)
}

// installStandalone downloads the single per-channel build. Only the latest
// build is published, so the record always carries version "latest".
func (o *Orchestrator) installStandalone(ctx context.Context, installed *store.Installed, req InstallRequest) (*InstallResult, error) {
	s := req.Spec
	if s.Version != "" {
		return nil, apperr.UserInput("%s only publishes the latest build of each channel. Use `suiup install %s@%s`", s.Name(), s.Name(), s.Channel)
	}

	key := store.Key{Binary: s.Name(), Channel: s.Channel, Version: version.Latest}
	if r, ok := installed.Find(key); ok && !req.Force {
		return alreadyInstalled(r), nil
	}

	url := o.standaloneURL(s.Name(), s.Channel)
	dest := filepath.Join(o.layout.ChannelDir(s.Channel), o.versionedName(key.Binary, key.Version, false))
	o.logger.Debug("downloading standalone binary", "url", url)
	dl, err := o.fetcher.Download(ctx, url, dest, binary.FetchOptions{Force: req.Force})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", s.Name(), err)
	}
	if err := binary.SetExecutable(dest); err != nil {
		return nil, err
	}

	return &InstallResult{
		Record:   store.Record{Binary: key.Binary, Channel: key.Channel, Version: key.Version, Path: dest},
		Verified: dl.Verified,
	}, nil
}

// standaloneURL is <base>/<name>-<channel>-latest-<os>-<arch>[.exe].
func (o *Orchestrator) standaloneURL(name, channel string) string {
	file := fmt.Sprintf("%s-%s-%s-%s-%s", name, channel, version.Latest, o.platform.ReleaseOS(), o.platform.ReleaseArch())
	return o.walrusBaseURL + "/" + o.platform.Executable(file)
}

// installFromCatalog installs a binary that has its own release catalog with
// v-prefixed tags and bare executables as assets. Records use the
// "standalone" channel.
func (o *Orchestrator) installFromCatalog(ctx context.Context, installed *store.Installed, s spec.BinarySpec, st spec.InstallerStrategy) (*InstallResult, error) {
	src, err := sourceFor(st.Repo)
	if err != nil {
		return nil, err
	}

	key := store.Key{Binary: s.Name(), Channel: spec.Standalone, Version: version.Normalize(s.Version)}
	if key.Version != "" {
		if r, ok := installed.Find(key); ok {
			return alreadyInstalled(r), nil
		}
	}

	releases, err := o.catalog.ListReleases(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("list %s releases: %w", src, err)
	}

	if key.Version == "" {
		if len(releases) == 0 {
			return nil, apperr.NotFound(fmt.Sprintf("No releases found for %s", s.Name()), "")
		}
		key.Version = version.Normalize(releases[0].TagName)
		if r, ok := installed.Find(key); ok {
			return alreadyInstalled(r), nil
		}
	}

	rel, ok := releaseWithTag(releases, key.Version)
	if !ok {
		rel, err = o.catalog.ReleaseByTag(ctx, src, key.Version)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound(
				fmt.Sprintf("Version %s of %s not found", key.Version, s.Name()),
				fmt.Sprintf("Run `suiup install %s` to install the latest release", s.Name()))
		}
		if err != nil {
			return nil, fmt.Errorf("look up release %s: %w", key.Version, err)
		}
	}

	prefix := o.platform.Executable(fmt.Sprintf("%s-%s-%s", s.Name(), o.platform.ReleaseOS(), o.platform.ReleaseArch()))
	var asset catalog.Asset
	for _, a := range rel.Assets {
		if strings.HasPrefix(a.Name, prefix) && !catalog.IsChecksum(a.Name) {
			asset = a
			break
		}
	}
	if asset.Name == "" {
		return nil, apperr.NotFound(fmt.Sprintf("No %s build found for %s-%s in release %s",
			s.Name(), o.platform.ReleaseOS(), o.platform.ReleaseArch(), rel.TagName), "")
	}

	var opts binary.FetchOptions
	if companion, ok := rel.Companion(asset); ok {
		opts.ChecksumURL = companion.URL
	}
	dest := filepath.Join(o.layout.ChannelDir(spec.Standalone), o.versionedName(key.Binary, key.Version, false))
	dl, err := o.fetcher.Download(ctx, asset.URL, dest, opts)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", asset.Name, err)
	}
	if err := binary.SetExecutable(dest); err != nil {
		return nil, err
	}

	return &InstallResult{
		Record:   store.Record{Binary: key.Binary, Channel: key.Channel, Version: key.Version, Path: dest},
		Verified: dl.Verified,
	}, nil
}

// releaseWithTag finds the release whose normalized tag equals tag.
func releaseWithTag(releases []catalog.Release, tag string) (catalog.Release, bool) {
	for _, r := range releases {
		if version.Normalize(r.TagName) == tag {
			return r, true
		}
	}
	return catalog.Release{}, false
}

// installNightly always rebuilds; cargo --force replaces the previous build.
func (o *Orchestrator) installNightly(ctx context.Context, s spec.BinarySpec, st spec.NightlyStrategy) (*InstallResult, error) {
	path, err := o.builder.Build(ctx, binary.BuildRequest{
		Name:      s.Name(),
		RepoURL:   st.SourceURL,
		Branch:    st.Branch,
		Debug:     s.Debug,
		Root:      o.layout.ChannelDir(st.Branch),
		ExeSuffix: o.platform.ExeSuffix(),
	})
	if err != nil {
		return nil, err
	}
	return &InstallResult{
		Record: store.Record{Binary: s.Name(), Channel: st.Branch, Version: version.Nightly, Debug: s.Debug, Path: path},
	}, nil
}
