package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dumpscan/dumpscan/internal/config"
	"github.com/dumpscan/dumpscan/internal/export"
	"github.com/dumpscan/dumpscan/internal/loader"
	"github.com/dumpscan/dumpscan/internal/log"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [dump-file]",
		Short: "Export raw dump sections to files",
		Long: `Export writes selected top-level sections of a dump to standalone files
without running any analysis. Section names match the dump's top-level
keys case-insensitively.

Formats:
  json   Pretty-printed JSON (.json)
  gz     Gzip-compressed JSON (.jsonz), the default
  jsonl  One JSON line per element, array sections only (.jsonl)

Examples:
  # Export storage as compressed JSON
  dumpscan export --sections storage dump.json

  # Export several sections as pretty JSON
  dumpscan export --sections storage,indexedDB --format json dump.json

  # Export IndexedDB databases as JSONL into a specific directory
  dumpscan export --sections indexedDB --format jsonl -d ./out dump.json`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringSliceP("sections", "s", nil,
		"Dump sections to export (e.g. storage,indexedDB)")
	cmd.Flags().StringP("format", "f", string(config.DefaultExportFormat),
		"Export format: json, gz, or jsonl")
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory for exported files")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	sections, err := cmd.Flags().GetStringSlice("sections")
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return errors.New("no sections specified: use --sections to name at least one dump section")
	}

	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format := export.Format(formatStr)
	if !format.Valid() {
		return config.ErrInvalidExportFormat
	}

	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	dumpFile := args[0]
	dump, err := loader.Load(dumpFile)
	if err != nil {
		return fmt.Errorf("failed to load dump: %w", err)
	}

	results, err := export.New(outputDir).ExportSections(dump, sections, format)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d section(s) from %s:\n", len(results), dumpFile)
	for _, r := range results {
		fmt.Printf("  %-12s %s (%d bytes)\n", r.Section, r.Path, r.Size)
	}

	return nil
}
