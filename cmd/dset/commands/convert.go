package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/dset/pkg/svmlight"
)

var (
	convertIn      string
	convertOut     string
	convertZero    bool
	convertOne     bool
	convertComment string
)

var convertCmd = &cobra.Command{
	Use:   "convert --in <file> --out <file>",
	Short: "Re-encode a local svmlight file between index bases",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if convertZero && convertOne {
			return fmt.Errorf("--zero-based and --one-based are mutually exclusive")
		}
		base := svmlight.BaseZero
		if convertOne {
			base = svmlight.BaseOne
		}

		in, err := os.Open(convertIn)
		if err != nil {
			return err
		}
		defer in.Close()
		m, labels, err := svmlight.Decode(in, svmlight.DecodeOptions{})
		if err != nil {
			return err
		}

		out, err := os.Create(convertOut)
		if err != nil {
			return err
		}
		encErr := svmlight.Encode(m, labels, out, svmlight.EncodeOptions{
			ZeroBased: base,
			Comment:   convertComment,
		})
		closeErr := out.Close()
		if encErr != nil {
			return encErr
		}
		return closeErr
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertIn, "in", "", "input file")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output file")
	convertCmd.Flags().BoolVar(&convertZero, "zero-based", false, "write zero-based indices (default)")
	convertCmd.Flags().BoolVar(&convertOne, "one-based", false, "write one-based indices")
	convertCmd.Flags().StringVar(&convertComment, "comment", "", "header comment for the output file")
	cobra.CheckErr(convertCmd.MarkFlagRequired("in"))
	cobra.CheckErr(convertCmd.MarkFlagRequired("out"))
	rootCmd.AddCommand(convertCmd)
}
