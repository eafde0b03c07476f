package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/transaction"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

// PromoteResult describes a completed promotion.
type PromoteResult struct {
	Record store.Record
	// Path is the default file that now holds the promoted binary.
	Path string
	// Interrupted lists earlier promotions that never finished. They are
	// discarded once reported.
	Interrupted []*transaction.Promotion
}

// SetDefault promotes an installed binary. Without a version the highest
// installed version for the channel is chosen.
func (o *Orchestrator) SetDefault(ctx context.Context, s spec.BinarySpec) (*PromoteResult, error) {
	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}
	key, err := resolveDefault(s, installed)
	if err != nil {
		return nil, err
	}
	return o.promote(ctx, installed, key)
}

// Promote sets an exact installed record as the default. It is used after an
// install, when the record is already known.
func (o *Orchestrator) Promote(ctx context.Context, r store.Record) (*PromoteResult, error) {
	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}
	return o.promote(ctx, installed, r.Key())
}

// Switch promotes the highest installed version of bin for channel, which may
// also be a nightly branch. Release builds win over debug builds.
func (o *Orchestrator) Switch(ctx context.Context, bin spec.Binary, channel string) (*PromoteResult, error) {
	installed, err := o.loadInstalled()
	if err != nil {
		return nil, err
	}

	for _, debug := range []bool{false, true} {
		if v := version.Max(installed.Versions(bin.Name, channel, debug)); v != "" {
			return o.promote(ctx, installed, store.Key{Binary: bin.Name, Channel: channel, Version: v, Debug: debug})
		}
	}
	return nil, apperr.NotFound(
		fmt.Sprintf("No installed binary found for %s@%s", bin.Name, channel),
		fmt.Sprintf("Use `suiup show` to see installed binaries, or install it with `suiup install %s@%s`", bin.Name, channel))
}

// resolveDefault maps a spec onto the installed key it names.
func resolveDefault(s spec.BinarySpec, installed *store.Installed) (store.Key, error) {
	key := store.Key{Binary: s.Name(), Channel: s.Channel, Version: version.Normalize(s.Version), Debug: s.Debug}
	switch {
	case s.IsNightly():
		key.Channel = s.NightlyBranch
		key.Version = version.Nightly
	case s.Binary.Kind == spec.KindInstaller:
		key.Channel = spec.Standalone
	case s.Binary.Kind == spec.KindStandalone && key.Version == "":
		key.Version = version.Latest
	}

	if key.Version == "" {
		key.Version = version.Max(installed.Versions(key.Binary, key.Channel, key.Debug))
		if key.Version == "" {
			return store.Key{}, apperr.NotFound(
				fmt.Sprintf("No installed version of %s found for %s", key.Binary, key.Channel),
				installHint(key))
		}
	}
	return key, nil
}

// installHint suggests the install command that would produce k.
func installHint(k store.Key) string {
	target := k.Binary + "@" + k.Channel
	switch {
	case k.Version == version.Nightly:
		target = k.Binary + " --nightly " + k.Channel
	case k.Channel == spec.Standalone:
		target = k.Binary
		if k.Version != "" {
			target += "@" + k.Version
		}
	case k.Version != "" && k.Version != version.Latest:
		target += "-" + k.Version
	}
	if k.Debug {
		target += " --debug"
	}
	return fmt.Sprintf("Use `suiup show` to see installed binaries, or install it with `suiup install %s`", target)
}

func describeKey(k store.Key) string {
	out := fmt.Sprintf("%s %s (%s)", k.Binary, k.Version, k.Channel)
	if k.Debug {
		out += " debug build"
	}
	return out
}

// promote copies the recorded file into the default directory and then
// writes the default store. A journal entry brackets both steps so a crash in
// between is reported by the next promotion.
func (o *Orchestrator) promote(ctx context.Context, installed *store.Installed, key store.Key) (*PromoteResult, error) {
	// 1. Only recorded installs can be promoted
	rec, ok := installed.Find(key)
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("Binary %s not found in installed binaries", describeKey(key)), installHint(key))
	}
	src := o.recordPath(rec)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.NotFound(fmt.Sprintf("Installed file %s is missing", src), installHint(key))
		}
		return nil, fmt.Errorf("stat installed binary: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("operation cancelled: %w", err)
	}

	// 2. Load the default store before touching the default directory
	defaults, err := o.loadDefaults()
	if err != nil {
		return nil, err
	}

	// 3. Report and clear promotions a previous run left behind
	journalDir := o.layout.JournalDir()
	interrupted, err := transaction.Interrupted(journalDir)
	if err != nil {
		o.logger.Warn("cannot read promotion journal", "error", err)
	}
	if len(interrupted) > 0 {
		if err := transaction.Discard(journalDir, interrupted); err != nil {
			o.logger.Warn("cannot discard promotion journal", "error", err)
		}
	}

	// 4. Journal, place, record
	dst := o.DefaultPath(rec.Binary)
	entry := transaction.NewPromotion(rec.Binary, rec.Channel, rec.Version, rec.Debug, src, dst)
	if err := entry.Save(journalDir); err != nil {
		return nil, err
	}

	if err := transaction.ReplaceFile(src, dst, BinaryPermissions); err != nil {
		if cerr := entry.Complete(journalDir); cerr != nil {
			o.logger.Warn("cannot remove promotion journal", "error", cerr)
		}
		return nil, fmt.Errorf("place default %s: %w", rec.Binary, err)
	}
	if err := entry.Advance(journalDir, transaction.StatePlaced); err != nil {
		return nil, err
	}

	defaults.Set(rec.Binary, store.Default{Channel: rec.Channel, Version: rec.Version, Debug: rec.Debug})
	if err := defaults.Save(); err != nil {
		return nil, fmt.Errorf("save default binaries: %w", err)
	}

	if err := entry.Complete(journalDir); err != nil {
		o.logger.Warn("cannot remove promotion journal", "error", err)
	}
	o.logger.Info("promoted default", "binary", rec.Binary, "channel", rec.Channel, "version", rec.Version, "debug", rec.Debug)

	return &PromoteResult{Record: rec, Path: dst, Interrupted: interrupted}, nil
}
