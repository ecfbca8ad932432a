package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(d *deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := opts.open(ctx, d)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := d.manager().RunMigrations(ctx, db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}
