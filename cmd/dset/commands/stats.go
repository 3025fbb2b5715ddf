package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <dataset>",
	Short: "Print shape and label statistics for a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer ds.Release()
		m, labels, err := ds.Load(cmd.Context())
		if err != nil {
			return err
		}

		rows, cols := m.Dims()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "samples:  %d\n", rows)
		fmt.Fprintf(out, "features: %d\n", cols)
		fmt.Fprintf(out, "nonzero:  %d\n", m.NNZ())
		if rows > 0 && cols > 0 {
			fmt.Fprintf(out, "density:  %.4f\n", float64(m.NNZ())/float64(rows*cols))
		}

		counts := make(map[float64]int)
		for _, y := range labels {
			counts[y]++
		}
		keys := make([]float64, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Float64s(keys)
		fmt.Fprintln(out, "labels:")
		for _, k := range keys {
			fmt.Fprintf(out, "  %g: %d\n", k, counts[k])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
