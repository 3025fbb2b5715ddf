package commands

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <dataset>",
	Short: "Show a dataset's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(ds.Describe())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
