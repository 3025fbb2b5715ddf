package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// versioner is satisfied by dataset adapters that support versioned
// resolution. Every built-in type does; the assertion below guards
// registered third-party types that may not.
type versioner interface {
	Versions(ctx context.Context) ([]string, error)
}

var versionsCmd = &cobra.Command{
	Use:   "versions <dataset>",
	Short: "List a dataset's saved versions, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer ds.Release()
		v, ok := ds.(versioner)
		if !ok {
			return fmt.Errorf("dataset %q does not support versions", args[0])
		}
		versions, err := v.Versions(cmd.Context())
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "(no versions)")
			return nil
		}
		for _, version := range versions {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
