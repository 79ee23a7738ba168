package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dumpscan/dumpscan/internal/config"
	"github.com/dumpscan/dumpscan/internal/database"
	"github.com/dumpscan/dumpscan/internal/model"
	"github.com/spf13/cobra"
)

// Constants for change direction in comparison summaries.
const (
	changeDirectionGrew      = "grew"
	changeDirectionShrank    = "shrank"
	changeDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares analysis runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [dump-file]",
		Short: "Compare analysis runs from the history database",
		Long: `Compare displays differences between two stored analysis runs of a dump.

This command retrieves historical analysis data from the database and shows:
- Changes in key, record, store, and component counts
- Databases and object stores that appeared or disappeared
- Script components that were added or removed
- Storage key patterns that changed

The comparison requires at least two saved runs for the specified dump
file. Use 'dumpscan analyze --save' to store runs.

Examples:
  # Compare the latest two runs for a dump
  dumpscan compare dump.json

  # List all saved runs for a dump
  dumpscan compare --list dump.json

  # Compare with a specific historical run by ID
  dumpscan compare --with-run-id 5 dump.json

  # Output comparison in JSON format
  dumpscan compare --json dump.json

  # List all dump files in the database
  dumpscan compare --list-dumps`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List saved runs for the specified dump file")
	cmd.Flags().BoolP("list-dumps", "L", false,
		"List all dump files in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare with a specific run by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listDumps, err := cmd.Flags().GetBool("list-dumps")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database (unless --list-dumps)
	var dumpFile string
	if !listDumps {
		if len(args) == 0 {
			return errors.New("dump file is required (use --list-dumps to see available dumps)")
		}
		dumpFile = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listDumps {
		return listDumpFiles(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, dumpFile)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, dumpFile, withRunID, jsonOutput)
}

// listDumpFiles lists all dump files that have saved runs in the database.
func listDumpFiles(ctx context.Context, db *database.HistoryDB) error {
	files, err := db.ListDumpFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dump files: %w", err)
	}

	if len(files) == 0 {
		fmt.Println("No saved analysis runs found in the database.")
		fmt.Println("\nUse 'dumpscan analyze --save <dump-file>' to save a run.")
		return nil
	}

	fmt.Printf("Analyzed dumps (%d):\n\n", len(files))
	for _, file := range files {
		fmt.Printf("  %s\n", file)
	}
	fmt.Println("\nUse 'dumpscan compare --list <dump-file>' to see saved runs for a dump.")

	return nil
}

// listRunHistory lists all saved runs for a specific dump file.
func listRunHistory(ctx context.Context, db *database.HistoryDB, dumpFile string) error {
	runs, err := db.ListRuns(ctx, dumpFile)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No saved runs found for %s\n", dumpFile)
		fmt.Println("\nUse 'dumpscan analyze --save' to save a run for this dump.")
		return nil
	}

	fmt.Printf("Saved runs for %s (%d runs):\n\n", dumpFile, len(runs))
	fmt.Printf("  %-6s  %-20s  %-8s  %-8s  %-8s  %s\n", "ID", "Date", "Keys", "Records", "Stores", "Components")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, meta := range runs {
		fmt.Printf("  %-6d  %-20s  %-8d  %-8d  %-8d  %d\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.TotalKeys,
			meta.TotalRecords,
			meta.TotalStores,
			meta.TotalComponents,
		)
	}

	fmt.Println("\nUse 'dumpscan compare <dump-file>' to compare the latest two runs.")
	fmt.Println("Use 'dumpscan compare --with-run-id <id> <dump-file>' to compare with a specific run.")

	return nil
}

// runComparison performs the comparison between two stored analysis runs.
func runComparison(ctx context.Context, db *database.HistoryDB, dumpFile string, withRunID int64, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, dumpFile)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no saved runs found for %s", dumpFile)
	}

	if len(runs) < 2 && withRunID == 0 {
		return fmt.Errorf("at least 2 saved runs are required for comparison (found %d)", len(runs))
	}

	// Latest run is always the current one
	current, err := db.GetRun(ctx, runs[0].ID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runs[0].ID, err)
	}

	var previous *model.Analysis
	if withRunID > 0 {
		previous, err = db.GetRun(ctx, withRunID)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", withRunID, err)
		}
		if previous == nil {
			return fmt.Errorf("run with ID %d not found", withRunID)
		}
		if previous.DumpFile != dumpFile {
			return fmt.Errorf("run ID %d belongs to %s, not %s", withRunID, previous.DumpFile, dumpFile)
		}
	} else {
		previous, err = db.GetRun(ctx, runs[1].ID)
		if err != nil {
			return fmt.Errorf("failed to load run %d: %w", runs[1].ID, err)
		}
	}

	comparison := compareAnalyses(previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two analysis runs.
type ComparisonResult struct {
	// DumpFile is the analyzed dump file.
	DumpFile string `json:"dump_file"`

	// PreviousRun contains summary counts of the previous run.
	PreviousRun RunSummary `json:"previous_run"`

	// CurrentRun contains summary counts of the current run.
	CurrentRun RunSummary `json:"current_run"`

	// Change describes per-metric deltas and the overall direction.
	Change SummaryChange `json:"change"`

	// NewDatabases lists databases present only in the current run.
	NewDatabases []string `json:"new_databases,omitempty"`

	// RemovedDatabases lists databases present only in the previous run.
	RemovedDatabases []string `json:"removed_databases,omitempty"`

	// NewComponents lists script components present only in the current run.
	NewComponents []string `json:"new_components,omitempty"`

	// RemovedComponents lists script components present only in the previous run.
	RemovedComponents []string `json:"removed_components,omitempty"`

	// NewKeyPatterns lists storage key patterns present only in the current run.
	NewKeyPatterns []string `json:"new_key_patterns,omitempty"`

	// RemovedKeyPatterns lists storage key patterns present only in the previous run.
	RemovedKeyPatterns []string `json:"removed_key_patterns,omitempty"`
}

// RunSummary contains summary counts of one analysis run.
type RunSummary struct {
	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// TotalKeys is the combined localStorage and sessionStorage key count.
	TotalKeys int `json:"total_keys"`

	// TotalRecords is the record count across all object stores.
	TotalRecords int `json:"total_records"`

	// TotalStores is the number of object stores.
	TotalStores int `json:"total_stores"`

	// TotalComponents is the number of script components.
	TotalComponents int `json:"total_components"`

	// TotalCachedSize is the total cached response body size in bytes.
	TotalCachedSize int64 `json:"total_cached_size"`
}

// SummaryChange describes per-metric deltas between two runs.
type SummaryChange struct {
	// Direction is "grew", "shrank", or "unchanged", based on the
	// combined key and record counts.
	Direction string `json:"direction"`

	// KeysDelta is the change in total key count.
	KeysDelta int `json:"keys_delta"`

	// RecordsDelta is the change in total record count.
	RecordsDelta int `json:"records_delta"`

	// StoresDelta is the change in object store count.
	StoresDelta int `json:"stores_delta"`

	// ComponentsDelta is the change in script component count.
	ComponentsDelta int `json:"components_delta"`

	// CachedSizeDelta is the change in cached body size in bytes.
	CachedSizeDelta int64 `json:"cached_size_delta"`
}

// compareAnalyses compares two analysis runs and generates a comparison result.
func compareAnalyses(previous, current *model.Analysis) *ComparisonResult {
	result := &ComparisonResult{
		DumpFile:    current.DumpFile,
		PreviousRun: summarizeRun(previous),
		CurrentRun:  summarizeRun(current),
	}

	result.Change = calculateChange(result.PreviousRun, result.CurrentRun)

	result.NewDatabases, result.RemovedDatabases = diffNames(
		databaseNames(previous), databaseNames(current))
	result.NewComponents, result.RemovedComponents = diffNames(
		componentNames(previous), componentNames(current))
	result.NewKeyPatterns, result.RemovedKeyPatterns = diffNames(
		keyPatterns(previous), keyPatterns(current))

	return result
}

// summarizeRun extracts summary counts from an analysis.
func summarizeRun(analysis *model.Analysis) RunSummary {
	summary := RunSummary{
		AnalyzedAt:   analysis.AnalyzedAt,
		TotalRecords: analysis.TotalRecords(),
		TotalStores:  analysis.TotalStores(),
	}
	if analysis.Storage != nil {
		summary.TotalKeys = analysis.Storage.Local.TotalKeys + analysis.Storage.Session.TotalKeys
	}
	if analysis.CodeGraph != nil {
		summary.TotalComponents = analysis.CodeGraph.Stats.TotalComponents
	}
	if analysis.Caches != nil {
		summary.TotalCachedSize = analysis.Caches.TotalCachedSize
	}
	return summary
}

// calculateChange calculates per-metric deltas between two run summaries.
func calculateChange(previous, current RunSummary) SummaryChange {
	change := SummaryChange{
		KeysDelta:       current.TotalKeys - previous.TotalKeys,
		RecordsDelta:    current.TotalRecords - previous.TotalRecords,
		StoresDelta:     current.TotalStores - previous.TotalStores,
		ComponentsDelta: current.TotalComponents - previous.TotalComponents,
		CachedSizeDelta: current.TotalCachedSize - previous.TotalCachedSize,
	}

	previousVolume := previous.TotalKeys + previous.TotalRecords
	currentVolume := current.TotalKeys + current.TotalRecords

	switch {
	case currentVolume > previousVolume:
		change.Direction = changeDirectionGrew
	case currentVolume < previousVolume:
		change.Direction = changeDirectionShrank
	default:
		change.Direction = changeDirectionUnchanged
	}

	return change
}

// databaseNames returns the set of IndexedDB database names in an analysis.
func databaseNames(analysis *model.Analysis) map[string]struct{} {
	names := make(map[string]struct{}, len(analysis.IndexedDB))
	for name := range analysis.IndexedDB {
		names[name] = struct{}{}
	}
	return names
}

// componentNames returns the set of script component names in an analysis.
func componentNames(analysis *model.Analysis) map[string]struct{} {
	names := make(map[string]struct{})
	if analysis.CodeGraph == nil {
		return names
	}
	for name := range analysis.CodeGraph.Components {
		names[name] = struct{}{}
	}
	return names
}

// keyPatterns returns the union of key patterns across both storage areas.
func keyPatterns(analysis *model.Analysis) map[string]struct{} {
	patterns := make(map[string]struct{})
	if analysis.Storage == nil {
		return patterns
	}
	for p := range analysis.Storage.Local.KeyPatterns {
		patterns[p] = struct{}{}
	}
	for p := range analysis.Storage.Session.KeyPatterns {
		patterns[p] = struct{}{}
	}
	return patterns
}

// diffNames returns the names only in current (added) and only in previous
// (removed), both sorted for deterministic output.
func diffNames(previous, current map[string]struct{}) (added, removed []string) {
	for name := range current {
		if _, ok := previous[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range previous {
		if _, ok := current[name]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Analysis Comparison: %s\n", result.DumpFile)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nState: %s\n", formatChangeDirection(result.Change.Direction))

	fmt.Printf("\nPrevious run: %s\n", result.PreviousRun.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current run:  %s\n", result.CurrentRun.AnalyzedAt.Format("2006-01-02 15:04:05"))

	fmt.Println("\nSummary:")
	fmt.Printf("  %-12s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 48))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Keys",
		result.PreviousRun.TotalKeys, result.CurrentRun.TotalKeys,
		formatDelta(result.Change.KeysDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Records",
		result.PreviousRun.TotalRecords, result.CurrentRun.TotalRecords,
		formatDelta(result.Change.RecordsDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Stores",
		result.PreviousRun.TotalStores, result.CurrentRun.TotalStores,
		formatDelta(result.Change.StoresDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Components",
		result.PreviousRun.TotalComponents, result.CurrentRun.TotalComponents,
		formatDelta(result.Change.ComponentsDelta))
	fmt.Printf("  %-12s  %-10d  %-10d  %-10s\n", "Cached bytes",
		result.PreviousRun.TotalCachedSize, result.CurrentRun.TotalCachedSize,
		formatDelta(int(result.Change.CachedSizeDelta)))

	writeNameList("New databases", result.NewDatabases)
	writeNameList("Removed databases", result.RemovedDatabases)
	writeNameList("New components", result.NewComponents)
	writeNameList("Removed components", result.RemovedComponents)
	writeNameList("New key patterns", result.NewKeyPatterns)
	writeNameList("Removed key patterns", result.RemovedKeyPatterns)

	return nil
}

// writeNameList prints a named list section when it is non-empty.
func writeNameList(title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", title, len(names))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
}

// formatChangeDirection formats the change direction for display.
func formatChangeDirection(direction string) string {
	switch direction {
	case changeDirectionGrew:
		return "GREW (more keys or records than the previous run)"
	case changeDirectionShrank:
		return "SHRANK (fewer keys or records than the previous run)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
