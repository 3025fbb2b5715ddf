package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/dset/pkg/catalog"
)

var catalogPath string

var rootCmd = &cobra.Command{
	Use:   "dset",
	Short: "Inspect and convert svmlight datasets",
	Long: `dset - command line companion for svmlight dataset catalogs.

Datasets are defined in a YAML catalog mapping names to locations,
with optional versioning, codec options and storage credentials:

  train:
    type: svmlight
    filepath: s3://bucket/data/train.svm
    versioned: true
    save_args: {zero_based: false}

Examples:
  # Show a dataset's configuration
  dset -f catalog.yaml describe train

  # Check for data and list saved versions
  dset exists train
  dset versions train

  # Shape and label statistics
  dset stats train

  # Re-encode a local file from one-based to zero-based indices
  dset convert --in old.svm --out new.svm --zero-based`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "f", "catalog.yaml", "catalog file")
}

// openDataset loads the catalog and builds the named dataset.
func openDataset(name string) (catalog.Dataset, error) {
	c, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	return c.Get(name)
}
