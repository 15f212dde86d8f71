package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Create the missing content records of all registered settings keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := openCore()
			if err != nil {
				return err
			}
			defer closeCore(core)

			created, err := core.Registry.Reconcile(cmd.Context())
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %d settings records\n", created)

			return nil
		},
	}
}
