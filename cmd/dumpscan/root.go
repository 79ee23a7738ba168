// Package main provides the entry point for the dumpscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dumpscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dumpscan",
		Short: "Analyzer for web application client-state dumps",
		Long: `dumpscan analyzes client-state dumps captured from web applications.
It reads a JSON dump of localStorage, sessionStorage, IndexedDB, and the
HTTP response cache, and reports key patterns, inferred record schemas,
field cardinality, and the script dependency graph.

The tool never mutates its input. Dumps are read once, analyzed in memory,
and the results are written as reports and optional section exports.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
