package main

import (
	"os"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	verbose bool
	noColor bool
}

// newRootCmd builds the command tree. info is printed by --version.
func newRootCmd(info goversion.Info) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "suiup",
		Short: "Install and manage versions of sui, walrus and mvr",
		Long: `suiup installs release, nightly and standalone builds of the Sui toolchain
side by side and promotes one of them per binary to your PATH.

Examples:
  # Install the latest testnet sui and make it the default
  suiup install sui@testnet -y

  # Install a specific version without changing the default
  suiup install sui@mainnet-1.40.1

  # Build walrus from the main branch
  suiup install walrus --nightly main

  # Promote an installed version
  suiup default set sui@testnet-1.39.3`,
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if os.Getenv("NO_COLOR") != "" && !cmd.Flags().Changed("no-color") {
				flags.noColor = true
			}
		},
	}
	cmd.SetVersionTemplate("{{.Version}}")
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newInstallCmd(flags),
		newDefaultCmd(flags),
		newSwitchCmd(flags),
		newUpdateCmd(flags),
		newRemoveCmd(flags),
		newShowCmd(flags),
		newWhichCmd(flags),
		newListCmd(),
	)
	return cmd
}
