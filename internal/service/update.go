package service

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/catalog"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

// UpdateRequest contains the parameters for updating one binary.
type UpdateRequest struct {
	Spec spec.BinarySpec
	// Confirm decides whether a freshly installed record is promoted. A nil
	// Confirm never promotes.
	Confirm func(store.Record) (bool, error)
}

// UpdateResult reports what an update did, per installed channel.
type UpdateResult struct {
	Installed []store.Record
	// Current lists channels whose newest local version matches upstream.
	Current  []store.Record
	Promoted []*PromoteResult
}

type updateGroup struct {
	channel string
	debug   bool
	nightly bool
}

// Update brings every channel the binary is installed under up to the
// upstream latest. Release channels are compared against the catalog;
// nightly and standalone installs are always pulled fresh.
func (o *Orchestrator) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	s := req.Spec
	if s.Version != "" {
		return nil, apperr.UserInput("Update should be done without a version. Use `suiup install %s` to install a specific version", s.Name())
	}

	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}
	records := installed.ForBinary(s.Name())
	if len(records) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("Binary %s is not installed", s.Name()),
			fmt.Sprintf("Use `suiup install %s` to install it first", s.Name()))
	}

	result := &UpdateResult{}
	for _, g := range groupRecords(records) {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("operation cancelled: %w", err)
		}

		res, err := o.updateGroup(ctx, installed, s.Binary, g)
		if err != nil {
			return result, err
		}
		if res.AlreadyInstalled {
			result.Current = append(result.Current, res.Record)
			continue
		}
		result.Installed = append(result.Installed, res.Record)

		if req.Confirm == nil {
			continue
		}
		ok, err := req.Confirm(res.Record)
		if err != nil {
			return result, err
		}
		if !ok {
			continue
		}
		promoted, err := o.Promote(ctx, res.Record)
		if err != nil {
			return result, err
		}
		result.Promoted = append(result.Promoted, promoted)
	}
	return result, nil
}

// groupRecords collapses records into the distinct (channel, debug,
// nightly) combinations to update, in first-seen order.
func groupRecords(records []store.Record) []updateGroup {
	var out []updateGroup
	seen := map[updateGroup]bool{}
	for _, r := range records {
		g := updateGroup{channel: r.Channel, debug: r.Debug, nightly: r.Version == version.Nightly}
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

// updateGroup brings one group to upstream latest. Nightly and standalone
// groups are reinstalled unconditionally; release groups only when the
// catalog has a newer version than the highest one installed.
func (o *Orchestrator) updateGroup(ctx context.Context, installed *store.Installed, bin spec.Binary, g updateGroup) (*InstallResult, error) {
	target := spec.BinarySpec{Binary: bin, Channel: spec.DefaultChannel, Debug: g.debug}

	switch {
	case g.nightly:
		target.NightlyBranch = g.channel
		return o.Install(ctx, InstallRequest{Spec: target})
	case bin.Kind == spec.KindStandalone:
		target.Channel = g.channel
		return o.Install(ctx, InstallRequest{Spec: target, Force: true})
	case bin.Kind == spec.KindInstaller:
		return o.Install(ctx, InstallRequest{Spec: target})
	}

	target.Channel = g.channel
	local := version.Max(installed.Versions(bin.Name, g.channel, g.debug))

	src, err := sourceFor(bin.Repo)
	if err != nil {
		return nil, err
	}
	releases, err := o.catalog.ListReleases(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("list %s releases: %w", src, err)
	}
	_, latest, ok := catalog.LatestForChannel(releases, g.channel)
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("No release found for %s on %s", bin.Name, g.channel), "")
	}

	if version.Equal(local, latest) {
		rec, _ := installed.Find(store.Key{Binary: bin.Name, Channel: g.channel, Version: local, Debug: g.debug})
		return alreadyInstalled(rec), nil
	}
	o.logger.Info("update available", "binary", bin.Name, "channel", g.channel, "local", local, "latest", latest)
	target.Version = latest
	return o.Install(ctx, InstallRequest{Spec: target})
}
