// Package report renders analysis results for human and machine consumers.
//
// This package contains writers for different output formats:
//   - TextWriter: human-readable summary for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: full analysis report with schema tables
//
// plus the schema exporter, which reshapes the record-store analysis into
// a normalized schema document without doing any new inference.
//
// Writers consume analyzer output only, never the raw dump, and must
// tolerate any analysis section being absent: missing sections render as
// zero counts and empty tables rather than failing.
package report
