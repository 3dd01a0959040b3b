// Package main provides the entry point for the treediff CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treediff/cmd/treediff/commands"
	"github.com/Sumatoshi-tech/treediff/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "treediff",
		Short: "Treediff - structural diffs between git tree objects",
		Long: `Treediff computes the structural changes between two git tree objects,
reading loose objects straight from the repository object store.

Commands:
  diff      Compare two tree objects
  ls-tree   List the entries of a tree object`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewLsTreeCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "treediff %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
