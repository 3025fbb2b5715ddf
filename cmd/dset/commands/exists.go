package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var existsCmd = &cobra.Command{
	Use:   "exists <dataset>",
	Short: "Check whether a dataset has data to load",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer ds.Release()
		ok, err := ds.Exists(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(existsCmd)
}
