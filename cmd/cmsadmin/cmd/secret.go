package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/upeosoft/cms/internal/common"
)

func newSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random hex secret for signing session tokens",
		Args:  cobra.NoArgs,
		// no config or database needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 32 {
				return fmt.Errorf("--bytes must be at least 32, got %d", size)
			}
			s, err := common.MakeRandHexString(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "number of random bytes")
	return cmd
}
