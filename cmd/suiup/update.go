package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/suiup/internal/service"
	"github.com/ZebulonRouseFrantzich/suiup/internal/store"
)

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "update <binary>",
		Short: "Update a binary to the latest release of each installed channel",
		Long: `Check every channel the binary is installed under and install the upstream
latest where it is newer. Nightly and standalone installs are always
refreshed. Each newly installed version can be set as the default.`,
		Example: `  suiup update sui
  suiup update walrus -y`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			s, err := a.parse(args[0], (&specFlags{}).options())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			lock, err := a.lock(ctx)
			if err != nil {
				return err
			}
			defer a.release(lock)

			confirmer := a.confirmer(yes)
			res, err := a.orch.Update(ctx, service.UpdateRequest{
				Spec: s,
				Confirm: func(r store.Record) (bool, error) {
					a.finishProgress()
					a.printer.Success("Installed %s (%s)", r, r.Channel)
					return confirmer.Confirm(promotePrompt)
				},
			})
			a.finishProgress()
			if res != nil {
				for _, r := range res.Current {
					a.printer.Info("%s is up to date on %s", r, r.Channel)
				}
				for _, p := range res.Promoted {
					a.reportPromotion(ctx, p)
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Set updated versions as default without asking")
	return cmd
}
