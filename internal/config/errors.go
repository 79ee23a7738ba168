package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoDumpFile is returned when no dump file path is specified.
	// The analyze and export commands require at least one positional argument.
	ErrNoDumpFile = errors.New("no dump file specified: provide at least one dump file path")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no dumps are ever analyzed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidExportFormat is returned when the export format is not one
	// of json, gz, or jsonl.
	ErrInvalidExportFormat = errors.New("invalid export format: must be json, gz, or jsonl")
)
