package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/suiup/internal/output"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
)

// newShowCmd prints the default table followed by every installed binary.
func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show default and installed binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			status, err := a.orch.Show()
			if err != nil {
				return err
			}

			a.printer.Bold("Default binaries:")
			if len(status.Defaults) == 0 {
				a.printer.Info("  none")
			} else if err := printDefaults(a, status.Defaults); err != nil {
				return err
			}

			a.printer.Info("")
			a.printer.Bold("Installed binaries:")
			if len(status.Installed) == 0 {
				a.printer.Info("  none. Use `suiup install <binary>` to install one.")
				return nil
			}
			table := output.NewTable(a.printer.Out(), "BINARY", "CHANNEL", "VERSION", "DEBUG")
			for _, r := range status.Installed {
				debug := ""
				if r.Debug {
					debug = "yes"
				}
				table.Row(r.Binary, r.Channel, r.Version, debug)
			}
			return table.Flush()
		},
	}
}

func newWhichCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "which",
		Short: "Print the directory default binaries are installed to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.orch.Which())
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the binaries suiup can install",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := output.NewTable(cmd.OutOrStdout(), "BINARY", "DISTRIBUTION", "SOURCE")
			for _, b := range spec.Binaries() {
				table.Row(b.Name, b.Kind.String(), b.SourceURL())
			}
			return table.Flush()
		},
	}
}
