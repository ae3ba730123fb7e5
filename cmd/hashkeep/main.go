package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "hashkeep",
		Short:   "Hash, scan, verify, and compare file trees",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newHashCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newDedupCmd())
	root.AddCommand(newBenchmarkCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the hashkeep version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("hashkeep " + root.Version)
		},
	})

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
