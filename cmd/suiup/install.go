package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/suiup/internal/binary"
	"github.com/ZebulonRouseFrantzich/suiup/internal/output"
	"github.com/ZebulonRouseFrantzich/suiup/internal/service"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

const promotePrompt = "Do you want to set this new installed version as the default one? [y/N]"

// specFlags are the options that accompany a specifier.
type specFlags struct {
	nightly string
	debug   bool
}

func (f *specFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nightly, "nightly", "", "Build from this branch instead of downloading a release")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Use the debug build (sui, or any binary with --nightly)")
}

func (f *specFlags) options() spec.Options {
	return spec.Options{Debug: f.debug, Nightly: f.nightly}
}

func newInstallCmd(flags *rootFlags) *cobra.Command {
	var sf specFlags
	var yes bool

	cmd := &cobra.Command{
		Use:   "install <binary>[@<channel>][-<version>]",
		Short: "Install a binary",
		Long: `Install a binary into the version store and offer to make it the default.

The specifier is the binary name, optionally followed by @, ==, = or a space
and a channel (testnet, devnet, mainnet), a version, or channel-version.
Without a version the latest release of the channel is installed.`,
		Example: `  suiup install sui
  suiup install sui@testnet-1.39.3
  suiup install mvr@0.0.5
  suiup install sui --nightly main --debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			s, err := a.parse(args[0], sf.options())
			if err != nil {
				return err
			}
			return runInstall(cmd, a, s, yes)
		},
	}
	sf.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Set the installed version as default without asking")
	return cmd
}

// runInstall installs s under the command lock and offers to promote it.
func runInstall(cmd *cobra.Command, a *app, s spec.BinarySpec, yes bool) error {
	ctx := cmd.Context()
	lock, err := a.lock(ctx)
	if err != nil {
		return err
	}
	defer a.release(lock)

	if s.IsNightly() {
		a.printer.Info("Building %s from branch %s. This can take a while...", s.Name(), output.Highlight(s.NightlyBranch))
	}
	res, err := a.orch.Install(ctx, service.InstallRequest{Spec: s})
	a.finishProgress()
	if err != nil {
		return err
	}

	if res.AlreadyInstalled {
		a.printer.Info("%s is already installed (%s). Use `suiup default set %s` to make it the default.",
			res.Record, res.Record.Channel, installedSpec(res.Record))
		return nil
	}
	a.printer.Success("Installed %s (%s)", res.Record, res.Record.Channel)
	if res.Verified != binary.VerificationNone {
		a.printer.Debug("verified with %s", res.Verified)
	}

	ok, err := a.confirmer(yes).Confirm(promotePrompt)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	promoted, err := a.orch.Promote(ctx, res.Record)
	if err != nil {
		return err
	}
	a.reportPromotion(ctx, promoted)
	return nil
}

// installedSpec renders the "default set" argument for an installed record.
func installedSpec(r store.Record) string {
	switch {
	case r.Version == version.Nightly:
		out := r.Binary + " --nightly " + r.Channel
		if r.Debug {
			out += " --debug"
		}
		return out
	case r.Channel == spec.Standalone:
		return r.Binary + "@" + r.Version
	}
	out := r.Binary + "@" + r.Channel + "-" + r.Version
	if r.Version == version.Latest {
		out = r.Binary + "@" + r.Channel
	}
	if r.Debug {
		out += " --debug"
	}
	return out
}
