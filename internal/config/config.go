package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dumpscan/dumpscan/internal/export"
)

// Default configuration values.
const (
	// DefaultOutputDir is where reports and exports land when the user
	// doesn't specify a directory. Relative to the working directory so a
	// casual run leaves its artifacts next to the dump being inspected.
	DefaultOutputDir = "./dumps"

	// DefaultExportFormat compresses section exports by default: raw
	// sections of real dumps regularly run to tens of megabytes of JSON.
	DefaultExportFormat = export.FormatGzip

	// DefaultBatchSize of 4 concurrent dump analyses keeps memory bounded.
	// Every dump is held fully in memory while its analysis runs, and
	// large dumps dominate the footprint, not the analyzers.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "dumpscan"
)

// Config holds all configuration options for dumpscan.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// DumpFiles is the list of dump files to analyze.
	// Must contain at least one path.
	DumpFiles []string

	// OutputDir is the directory for generated artifacts: the markdown
	// report, schema document, code graph, and section exports.
	// Created automatically if it doesn't exist.
	OutputDir string

	// Sections lists dump sections to export, by top-level key
	// (case-insensitive). Empty means no section export.
	Sections []string

	// ExportFormat is the section export format: json, gz, or jsonl.
	ExportFormat export.Format

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the human-readable
	// terminal summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output on stdout instead of
	// the terminal summary. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written there instead of stdout.
	ReportFile string

	// BatchSize is the number of dumps analyzed concurrently when
	// multiple files are given.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .dumpscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory for the analysis-history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save analysis runs to the history
	// database for later comparison.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		ExportFormat: DefaultExportFormat,
		BatchSize:    DefaultBatchSize,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for dumpscan.
// On Linux: ~/.local/share/dumpscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for dumpscan.
// On Linux: ~/.config/dumpscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// Returns a sentinel error (see errors.go) describing the first problem.
func (c *Config) Validate() error {
	if len(c.DumpFiles) == 0 {
		return ErrNoDumpFile
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !c.ExportFormat.Valid() {
		return ErrInvalidExportFormat
	}
	return nil
}

// ApplyFile overlays settings from a loaded configuration file.
// CLI flags win: only fields still at their defaults are overridden.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.OutputDir != "" && c.OutputDir == DefaultOutputDir {
		c.OutputDir = f.OutputDir
	}
	if f.ExportFormat != "" && c.ExportFormat == DefaultExportFormat {
		c.ExportFormat = export.Format(f.ExportFormat)
	}
	if len(f.Sections) > 0 && len(c.Sections) == 0 {
		c.Sections = f.Sections
	}
	if f.SaveHistory != nil {
		c.SaveToDB = *f.SaveHistory
	}
}
