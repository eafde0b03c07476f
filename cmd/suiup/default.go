package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/suiup/internal/output"
	"github.com/ZebulonRouseFrantzich/suiup/internal/service"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
)

func newDefaultCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Get or set the default binaries",
	}
	cmd.AddCommand(newDefaultGetCmd(flags), newDefaultSetCmd(flags))
	return cmd
}

func newDefaultGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the default binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			entries, err := a.orch.Defaults()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.printer.Info("No default binaries set. Use `suiup install <binary>` or `suiup default set <binary>`.")
				return nil
			}
			return printDefaults(a, entries)
		},
	}
}

// printDefaults renders one table row per default binary.
func printDefaults(a *app, entries []service.DefaultEntry) error {
	table := output.NewTable(a.printer.Out(), "BINARY", "CHANNEL", "VERSION", "DEBUG")
	for _, e := range entries {
		ver := e.Default.Version
		if !e.Present {
			ver += " (file missing)"
		}
		debug := ""
		if e.Default.Debug {
			debug = "yes"
		}
		table.Row(e.Name, e.Default.Channel, ver, debug)
	}
	return table.Flush()
}

func newDefaultSetCmd(flags *rootFlags) *cobra.Command {
	var sf specFlags

	cmd := &cobra.Command{
		Use:   "set <binary>[@<channel>][-<version>]",
		Short: "Set an installed binary as the default",
		Long: `Copy an installed binary into the default directory under its bare name.

Without a version the highest installed version of the channel is used.`,
		Example: `  suiup default set sui@testnet-1.39.3
  suiup default set sui@testnet
  suiup default set walrus --nightly main`,
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

			ctx := cmd.Context()
			lock, err := a.lock(ctx)
			if err != nil {
				return err
			}
			defer a.release(lock)

			res, err := a.orch.SetDefault(ctx, s)
			if err != nil {
				return err
			}
			a.reportPromotion(ctx, res)
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

func newSwitchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <binary>@<channel>",
		Short: "Switch the default to the newest installed version of a channel",
		Long: `Promote the highest installed version of a binary for a channel or
nightly branch.`,
		Example: `  suiup switch sui@testnet
  suiup switch sui@main`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, channel, err := spec.ParseSwitch(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			lock, err := a.lock(ctx)
			if err != nil {
				return err
			}
			defer a.release(lock)

			res, err := a.orch.Switch(ctx, bin, channel)
			if err != nil {
				return err
			}
			a.reportPromotion(ctx, res)
			return nil
		},
	}
}
