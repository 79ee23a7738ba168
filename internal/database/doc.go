// Package database provides SQLite-based storage for analysis history.
//
// Each analysis run can be persisted with its summary counts and the full
// analysis JSON. The history makes dump-over-time questions answerable:
// did the schema of a store change, did the script dependency graph grow,
// did a new key pattern appear. The compare command reads two stored runs
// and diffs their summaries.
//
// The database lives in the XDG data directory by default and uses the
// pure-Go modernc.org/sqlite driver, so no cgo is required.
package database
