// Package main provides the entry point for the statname CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statname/cmd/statname/commands"
	"github.com/Sumatoshi-tech/statname/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "statname",
		Short: "statname - symbol-table compression analysis for metric names",
		Long: `statname measures how much memory symbol-table interning saves on a
corpus of hierarchical, period-delimited metric names.

Commands:
  compress  Analyze a corpus and report compression statistics
  render    Render a token-frequency chart as HTML
  bench     Run a concurrent encode/free workload over a corpus`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewCompressCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewBenchCommand())
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
			fmt.Fprintf(os.Stdout, "statname %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
