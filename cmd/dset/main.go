// Package main is the entry point for the dset CLI.
//
// Usage:
//
//	dset [flags] <command> [args]
//
// Commands:
//
//	describe   - Show a dataset's configuration
//	exists     - Check whether a dataset has data
//	versions   - List a dataset's saved versions
//	stats      - Print shape and label statistics for a dataset
//	convert    - Re-encode a svmlight file between index bases
//
// Datasets are defined in a YAML catalog file (see the catalog package);
// the default location is ./catalog.yaml, overridable with -f.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/dset/cmd/dset/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
