package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dumpscan/dumpscan/internal/config"
	"github.com/dumpscan/dumpscan/internal/database"
	"github.com/dumpscan/dumpscan/internal/export"
	"github.com/dumpscan/dumpscan/internal/loader"
	"github.com/dumpscan/dumpscan/internal/log"
	"github.com/dumpscan/dumpscan/internal/model"
	"github.com/dumpscan/dumpscan/internal/pipeline"
	"github.com/dumpscan/dumpscan/internal/report"
	"github.com/spf13/cobra"
)

// Names of the report artifacts written into the output directory.
const (
	markdownReportName = "analysis-report.md"
	schemaFileName     = "schema.json"
	codeGraphFileName  = "code-graph.json"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [dump-file...]",
		Short: "Analyze client-state dump files",
		Long: `Analyze reads one or more JSON dump files and runs the full analysis
pipeline over each:

- Key-value storage statistics (key patterns, sizes, data types, cardinality)
- IndexedDB record schema inference with field presence and cardinality
- HTTP cache content-type and size breakdown
- Script dependency graph recovered from cached JavaScript

A summary is printed to the terminal, and detailed artifacts are written
to the output directory: a Markdown report, the inferred schemas as JSON,
and the code dependency graph as JSON.

Examples:
  # Analyze a single dump
  dumpscan analyze dump.json

  # Analyze several dumps concurrently
  dumpscan analyze monday.json tuesday.json friday.json

  # Output the full analysis as JSON instead of the summary
  dumpscan analyze --json dump.json

  # Write the report to a file and export raw sections
  dumpscan analyze -o report.md --markdown --sections storage,indexedDB dump.json

  # Save the run to the history database for later comparison
  dumpscan analyze --save dump.json`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Output flags
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory for generated artifacts (report, schemas, code graph, exports)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Section export flags
	cmd.Flags().StringSliceP("sections", "s", nil,
		"Dump sections to export as raw files (e.g. storage,indexedDB)")
	cmd.Flags().StringP("format", "f", string(config.DefaultExportFormat),
		"Section export format: json, gz, or jsonl")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of dumps analyzed concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .dumpscan in current or home directory)")

	// History flags
	cmd.Flags().Bool("save", false,
		"Save the analysis run to the history database")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction. Dump keys and
	// values routinely hold live session tokens.
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Sections, err = cmd.Flags().GetStringSlice("sections")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.ExportFormat = export.Format(format)

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load defaults from the configuration file.
	// If the user explicitly specified a path, error when it is missing.
	// Otherwise a missing file is fine and flags stand alone.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.DBDir = config.XDGDataDir()
	cfg.DumpFiles = args

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runAnalyze executes the analysis over all configured dump files.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"dumps", cfg.DumpFiles,
		"outputDir", cfg.OutputDir,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	// Use batch processor for parallel analysis if multiple dumps
	if len(cfg.DumpFiles) > 1 && cfg.BatchSize > 1 {
		return runBatchAnalyze(ctx, cfg, db, logger)
	}

	return runSequentialAnalyze(ctx, cfg, db, logger)
}

// runSequentialAnalyze analyzes dumps one at a time.
func runSequentialAnalyze(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	for _, dumpFile := range cfg.DumpFiles {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Analyzing %s...\n", dumpFile)
		startTime := time.Now()

		analysis, err := analyzeDump(ctx, cfg, dumpFile, logger)
		if err != nil {
			logger.Error("analysis failed", "file", dumpFile, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", dumpFile, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, analysis); err != nil {
			logger.Error("report failed", "file", dumpFile, "error", err)
		}

		if err := saveAnalysis(ctx, db, analysis, logger); err != nil {
			logger.Error("failed to save analysis", "file", dumpFile, "error", err)
		}
	}

	return nil
}

// runBatchAnalyze analyzes multiple dumps concurrently using BatchProcessor.
func runBatchAnalyze(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch analysis of %d dumps (concurrency: %d)...\n\n",
		len(cfg.DumpFiles), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func(ctx context.Context, dumpFile string) (*model.Analysis, error) {
			return analyzeDump(ctx, cfg, dumpFile, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// The callback runs under the processor's lock, so terminal output and
	// database writes do not interleave between dumps.
	var mu sync.Mutex
	_, err := bp.ProcessWithCallback(ctx, cfg.DumpFiles, func(analysis *model.Analysis, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Analysis completed: %s\n", index+1, len(cfg.DumpFiles), analysis.DumpFile)

		if err := outputReport(cfg, analysis); err != nil {
			logger.Error("report failed", "file", analysis.DumpFile, "error", err)
		}

		if err := saveAnalysis(ctx, db, analysis, logger); err != nil {
			logger.Error("failed to save analysis", "file", analysis.DumpFile, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch analysis completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// analyzeDump loads a dump, runs the analysis pipeline, writes the artifact
// files, and exports any requested raw sections.
func analyzeDump(ctx context.Context, cfg *config.Config, dumpFile string, logger *slog.Logger) (*model.Analysis, error) {
	dump, err := loader.Load(dumpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load dump: %w", err)
	}

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(pipeline.DefaultSteps(logger)...)

	analysis := model.NewAnalysis(dumpFile)
	if err := p.Execute(ctx, dump, analysis); err != nil {
		return nil, err
	}

	if err := writeArtifacts(cfg, analysis); err != nil {
		return nil, fmt.Errorf("failed to write artifacts: %w", err)
	}

	if len(cfg.Sections) > 0 {
		exporter := export.New(artifactDir(cfg, dumpFile))
		results, err := exporter.ExportSections(dump, cfg.Sections, cfg.ExportFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to export sections: %w", err)
		}
		for _, r := range results {
			logger.Info("section exported", "section", r.Section, "path", r.Path, "bytes", r.Size)
		}
	}

	return analysis, nil
}

// artifactDir returns the directory for a dump's artifacts. With a single
// dump, artifacts go directly into the output directory; with several dumps
// each gets a subdirectory named after the file stem so nothing collides.
func artifactDir(cfg *config.Config, dumpFile string) string {
	if len(cfg.DumpFiles) <= 1 {
		return cfg.OutputDir
	}

	base := filepath.Base(dumpFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cfg.OutputDir, stem)
}

// writeArtifacts writes the Markdown report, schema document, and code
// graph into the output directory.
func writeArtifacts(cfg *config.Config, analysis *model.Analysis) error {
	dir := artifactDir(cfg, analysis.DumpFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Markdown report
	mdFile, err := os.OpenFile(filepath.Join(dir, markdownReportName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := report.NewMarkdownWriter(mdFile).Write(analysis); err != nil {
		_ = mdFile.Close()
		return err
	}
	if err := mdFile.Close(); err != nil {
		return err
	}

	// Inferred record schemas
	schemaFile, err := os.OpenFile(filepath.Join(dir, schemaFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := report.WriteSchemaJSON(schemaFile, report.ExportSchema(analysis)); err != nil {
		_ = schemaFile.Close()
		return err
	}
	if err := schemaFile.Close(); err != nil {
		return err
	}

	// Code dependency graph, only when the step produced one
	if analysis.CodeGraph != nil {
		graphFile, err := os.OpenFile(filepath.Join(dir, codeGraphFileName), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return err
		}
		if err := report.WriteCodeGraphJSON(graphFile, analysis.CodeGraph); err != nil {
			_ = graphFile.Close()
			return err
		}
		if err := graphFile.Close(); err != nil {
			return err
		}
	}

	return nil
}

// outputReport outputs the analysis report in the requested format.
func outputReport(cfg *config.Config, analysis *model.Analysis) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports can echo storage keys and cached URLs, so keep them
		// readable only by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full analysis with all data)
	if cfg.JSONReport {
		_, err := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()).Write(analysis)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		_, err := report.NewMarkdownWriter(output).Write(analysis)
		return err
	}

	// Human-readable summary (default)
	_, err := report.NewTextWriter(output, report.WithVerbose(cfg.Verbose)).Write(analysis)
	return err
}

// saveAnalysis saves the analysis to the history database if enabled.
// If db is nil, this function is a no-op.
func saveAnalysis(ctx context.Context, db *database.HistoryDB, analysis *model.Analysis, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveAnalysis(ctx, analysis)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	logger.Info("analysis saved to history", "file", analysis.DumpFile, "runID", id)
	return nil
}
