package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/spec"
)

func newRemoveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <binary>",
		Aliases: []string{"uninstall"},
		Short:   "Remove every installed version of a binary",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, ok := spec.Lookup(args[0])
			if !ok {
				return apperr.UserInput("Invalid binary name: %s. Use `suiup list` to find available binaries to install.", args[0])
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

			res, err := a.orch.Remove(ctx, bin)
			if err != nil {
				return err
			}
			for _, path := range res.Missing {
				a.printer.Warn("%s was already deleted", path)
			}
			for _, r := range res.Removed {
				a.printer.Info("Removed %s (%s)", r, r.Channel)
			}
			if res.DefaultRemoved {
				a.printer.Info("Removed default %s", bin.Name)
			}
			a.printer.Success("%s removed", bin.Name)
			return nil
		},
	}
}
