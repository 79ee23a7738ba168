package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dumpscan/dumpscan/internal/model"
)

// HistoryDB provides SQLite-based storage for analysis runs.
// It manages connection pooling and provides methods for saving and
// retrieving past analyses.
//
// Design decision: We use a single database file for all dumps rather
// than one file per dump. Cross-dump queries (list all analyzed dumps,
// compare two runs) stay simple, and backup is a single file copy.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "dumpscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string.
	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent batch saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Analysis runs store one row per analyzed dump, with summary counts
	-- denormalized for listing and the full analysis retained as JSON.
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dump_file TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_keys INTEGER DEFAULT 0,
		total_records INTEGER DEFAULT 0,
		total_stores INTEGER DEFAULT 0,
		total_components INTEGER DEFAULT 0,
		analysis_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_dump_file ON analysis_runs(dump_file);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON analysis_runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored analysis run.
// This is used for displaying history without loading the full analysis.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// DumpFile is the path of the dump that was analyzed.
	DumpFile string

	// Timestamp is when the run was saved.
	Timestamp time.Time

	// TotalKeys is the combined localStorage and sessionStorage key count.
	TotalKeys int

	// TotalRecords is the record count across all object stores.
	TotalRecords int

	// TotalStores is the number of object stores seen.
	TotalStores int

	// TotalComponents is the number of script components in the code graph.
	TotalComponents int
}

// SaveAnalysis persists an analysis run and returns its database ID.
func (hdb *HistoryDB) SaveAnalysis(ctx context.Context, analysis *model.Analysis) (int64, error) {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize analysis: %w", err)
	}

	totalKeys := 0
	if analysis.Storage != nil {
		totalKeys = analysis.Storage.Local.TotalKeys + analysis.Storage.Session.TotalKeys
	}
	totalComponents := 0
	if analysis.CodeGraph != nil {
		totalComponents = analysis.CodeGraph.Stats.TotalComponents
	}

	query := `
	INSERT INTO analysis_runs (dump_file, total_keys, total_records, total_stores, total_components, analysis_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		analysis.DumpFile,
		totalKeys,
		analysis.TotalRecords(),
		analysis.TotalStores(),
		totalComponents,
		string(analysisJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis run: %w", err)
	}

	return result.LastInsertId()
}

// GetRun retrieves a stored analysis by its database ID.
// Returns nil without error when the ID is unknown.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Analysis, error) {
	query := `
	SELECT analysis_json FROM analysis_runs
	WHERE id = ?
	`

	var analysisJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&analysisJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	var analysis model.Analysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	return &analysis, nil
}

// GetLatestRun retrieves the most recent stored analysis for a dump file.
// Returns nil without error when the dump has no history.
func (hdb *HistoryDB) GetLatestRun(ctx context.Context, dumpFile string) (*model.Analysis, error) {
	query := `
	SELECT analysis_json FROM analysis_runs
	WHERE dump_file = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var analysisJSON string
	err := hdb.db.QueryRowContext(ctx, query, dumpFile).Scan(&analysisJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	var analysis model.Analysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	return &analysis, nil
}

// ListRuns retrieves run metadata for a dump file, newest first.
// An empty dumpFile lists runs for all dumps.
func (hdb *HistoryDB) ListRuns(ctx context.Context, dumpFile string) ([]RunMetadata, error) {
	query := `
	SELECT id, dump_file, timestamp, total_keys, total_records, total_stores, total_components
	FROM analysis_runs
	WHERE 1=1
	`
	args := make([]any, 0, 1)

	if dumpFile != "" {
		query += " AND dump_file = ?"
		args = append(args, dumpFile)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		err := rows.Scan(
			&meta.ID,
			&meta.DumpFile,
			&timestamp,
			&meta.TotalKeys,
			&meta.TotalRecords,
			&meta.TotalStores,
			&meta.TotalComponents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListDumpFiles returns the distinct dump files with stored runs.
func (hdb *HistoryDB) ListDumpFiles(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT dump_file FROM analysis_runs
	ORDER BY dump_file
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dump files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var file string
		if err := rows.Scan(&file); err != nil {
			return nil, fmt.Errorf("failed to scan dump file: %w", err)
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
