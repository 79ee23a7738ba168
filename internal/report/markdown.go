package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dumpscan/dumpscan/internal/model"
	"github.com/nao1215/markdown"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MarkdownWriter outputs the full analysis report in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, lists, and GitHub-flavored
// alerts.
type MarkdownWriter struct {
	baseWriter

	// printer renders grouped integers for record counts.
	printer *message.Printer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}
}

// Write outputs the full analysis report in Markdown format.
// Every section tolerates its analysis being absent and renders zero
// counts instead of failing.
func (w *MarkdownWriter) Write(analysis *model.Analysis) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, analysis)
	w.writeSummary(md, analysis)
	w.writeStorageDetails(md, analysis.Storage)
	w.writeIndexedDBDetails(md, analysis)
	w.writeCodeGraph(md, analysis.CodeGraph)
	w.writeFooter(md, analysis)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and generation info.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, analysis *model.Analysis) {
	md.H1("Storage Dump Analysis Report")
	md.PlainText("")
	md.PlainTextf("**Generated**: %s", analysis.AnalyzedAt.Format("2006-01-02T15:04:05Z07:00"))
	if analysis.DumpFile != "" {
		md.PlainTextf("**Dump**: `%s`", analysis.DumpFile)
	}
	md.PlainText("")
	md.HorizontalRule()
	md.PlainText("")
}

// writeSummary writes the executive summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Executive Summary")
	md.PlainText("")

	var local, session model.StoreStats
	if analysis.Storage != nil {
		local = analysis.Storage.Local
		session = analysis.Storage.Session
	}

	md.PlainText("### Storage")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("**localStorage**: %d keys (%s)", local.TotalKeys, formatMB(local.TotalSizeBytes)),
		fmt.Sprintf("**sessionStorage**: %d keys (%s)", session.TotalKeys, formatMB(session.TotalSizeBytes)),
	)
	md.PlainText("")

	md.PlainText("### IndexedDB")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("**Databases**: %d", len(analysis.IndexedDB)),
		fmt.Sprintf("**Total Records**: %s", w.printer.Sprintf("%d", analysis.TotalRecords())),
	)
	md.PlainText("")

	if analysis.Storage == nil && len(analysis.IndexedDB) == 0 {
		md.Note("No storage or database sections were present in this dump.")
		md.PlainText("")
	}
}

// writeStorageDetails writes key patterns, size distribution, and data
// types for localStorage.
func (w *MarkdownWriter) writeStorageDetails(md *markdown.Markdown, storage *model.StorageAnalysis) {
	md.HorizontalRule()
	md.PlainText("")
	md.H2("Detailed Analysis")
	md.PlainText("")
	md.PlainText("### localStorage Details")
	md.PlainText("")

	var local model.StoreStats
	if storage != nil {
		local = storage.Local
	}

	if len(local.KeyPatterns) > 0 {
		patterns := make([]string, 0, len(local.KeyPatterns))
		for _, pattern := range sortedKeys(local.KeyPatterns) {
			patterns = append(patterns, fmt.Sprintf("`%s`: %d keys", pattern, local.KeyPatterns[pattern]))
		}
		md.BulletList(patterns...)
		md.PlainText("")
	}

	md.PlainText("**Size Distribution**:")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("Min: %d bytes", local.ValueSizesBytes.Min),
		fmt.Sprintf("Max: %s", formatKB(local.ValueSizesBytes.Max)),
		fmt.Sprintf("Median: %s", formatKB(local.ValueSizesBytes.Median)),
		fmt.Sprintf("Average: %.2f KB", local.AvgValueSize/1024),
	)
	md.PlainText("")

	if len(local.DataTypes) > 0 {
		md.PlainText("**Data Types**:")
		md.PlainText("")
		types := make([]string, 0, len(local.DataTypes))
		for _, dataType := range sortedKeys(local.DataTypes) {
			types = append(types, fmt.Sprintf("%s: %d", dataType, local.DataTypes[dataType]))
		}
		md.BulletList(types...)
		md.PlainText("")
	}
}

// writeIndexedDBDetails writes per-store schema tables and cardinality.
func (w *MarkdownWriter) writeIndexedDBDetails(md *markdown.Markdown, analysis *model.Analysis) {
	md.PlainText("### IndexedDB Stores")
	md.PlainText("")

	for _, dbName := range sortedKeys(analysis.IndexedDB) {
		db := analysis.IndexedDB[dbName]
		md.PlainTextf("#### Database: %s (v%d)", dbName, db.Version)
		md.PlainText("")

		for _, storeName := range sortedKeys(db.Stores) {
			w.writeStore(md, storeName, db.Stores[storeName])
		}
	}
}

// writeStore writes one object store's facts, schema table, and
// cardinality listing.
func (w *MarkdownWriter) writeStore(md *markdown.Markdown, name string, store model.StoreAnalysis) {
	md.PlainTextf("**Store**: `%s`", name)
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("Records: %s", w.printer.Sprintf("%d", store.RecordCount)),
		fmt.Sprintf("Key Path: `%s`", keyPathString(store.KeyPath)),
	)
	md.PlainText("")

	if len(store.Schema) > 0 {
		md.PlainText("**Schema**:")
		md.PlainText("")

		rows := make([][]string, 0, len(store.Schema))
		for _, field := range sortedKeys(store.Schema) {
			fs := store.Schema[field]
			presence := fs.Presence
			if presence == "" {
				presence = "?"
			}
			rows = append(rows, []string{"`" + field + "`", fs.Type, presence})
		}

		md.Table(markdown.TableSet{
			Header: []string{"Field", "Type", "Presence"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(store.Cardinality) > 0 {
		md.PlainText("**Cardinality**:")
		md.PlainText("")
		entries := make([]string, 0, len(store.Cardinality))
		for _, field := range sortedKeys(store.Cardinality) {
			fc := store.Cardinality[field]
			entries = append(entries, fmt.Sprintf("`%s`: %d unique values (%.0f%%)",
				field, fc.UniqueValues, fc.CardinalityRatio*100))
		}
		md.BulletList(entries...)
		md.PlainText("")
	}
}

// writeCodeGraph writes the dependency graph summary.
func (w *MarkdownWriter) writeCodeGraph(md *markdown.Markdown, graph *model.CodeGraph) {
	if graph == nil {
		return
	}

	md.PlainText("### Code Analysis")
	md.PlainText("")
	md.BulletList(
		"Components: "+strconv.Itoa(graph.Stats.TotalComponents),
		"Dependencies: "+strconv.Itoa(graph.Stats.TotalDependencies),
	)
	md.PlainText("")
}

// writeFooter writes the report metadata footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, analysis *model.Analysis) {
	md.HorizontalRule()
	md.PlainText("")
	md.H2("Metadata")
	md.PlainText("")
	md.BulletList(
		fmt.Sprintf("Report Generated: %s", analysis.AnalyzedAt.Format("2006-01-02T15:04:05Z07:00")),
		"Analysis Tool: dumpscan",
	)
}

// keyPathString renders a store key path, which may be a string, an array,
// or absent.
func keyPathString(keyPath any) string {
	if keyPath == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", keyPath)
}
