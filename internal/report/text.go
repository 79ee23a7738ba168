package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dumpscan/dumpscan/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TextWriter outputs human-readable analysis summaries.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files and other tools.
type TextWriter struct {
	baseWriter

	// verbose enables per-pattern and per-store detail in the output.
	verbose bool

	// printer renders grouped integers ("12,345") for readability.
	printer *message.Printer
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the analysis summary in human-readable format.
func (w *TextWriter) Write(analysis *model.Analysis) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, analysis)
	w.writeStorage(&sb, analysis.Storage)
	w.writeIndexedDB(&sb, analysis)
	w.writeCaches(&sb, analysis.Caches)
	w.writeCodeGraph(&sb, analysis.CodeGraph)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with dump information.
func (w *TextWriter) writeHeader(sb *strings.Builder, analysis *model.Analysis) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Storage Dump Analysis: %s\n", analysis.DumpFile)
	fmt.Fprintf(sb, "Analyzed: %s\n", analysis.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// writeStorage writes the key-value store section.
// A nil section renders as zero counts, never an error.
func (w *TextWriter) writeStorage(sb *strings.Builder, storage *model.StorageAnalysis) {
	sb.WriteString("\n[Storage]\n")

	var local, session model.StoreStats
	if storage != nil {
		local = storage.Local
		session = storage.Session
	}

	fmt.Fprintf(sb, "  localStorage:   %s keys (%s)\n",
		w.printer.Sprintf("%d", local.TotalKeys), formatMB(local.TotalSizeBytes))
	fmt.Fprintf(sb, "  sessionStorage: %s keys (%s)\n",
		w.printer.Sprintf("%d", session.TotalKeys), formatKB(session.TotalSizeBytes))

	if w.verbose && local.TotalKeys > 0 {
		sb.WriteString("  localStorage key patterns:\n")
		for _, pattern := range sortedKeys(local.KeyPatterns) {
			fmt.Fprintf(sb, "    %-40s %d\n", pattern, local.KeyPatterns[pattern])
		}
	}
}

// writeIndexedDB writes the record database section.
func (w *TextWriter) writeIndexedDB(sb *strings.Builder, analysis *model.Analysis) {
	sb.WriteString("\n[IndexedDB]\n")
	fmt.Fprintf(sb, "  Databases:     %d\n", len(analysis.IndexedDB))
	fmt.Fprintf(sb, "  Object Stores: %d\n", analysis.TotalStores())
	fmt.Fprintf(sb, "  Total Records: %s\n", w.printer.Sprintf("%d", analysis.TotalRecords()))

	if !w.verbose {
		return
	}
	for _, dbName := range sortedKeys(analysis.IndexedDB) {
		db := analysis.IndexedDB[dbName]
		fmt.Fprintf(sb, "  %s (v%d):\n", dbName, db.Version)
		for _, storeName := range sortedKeys(db.Stores) {
			store := db.Stores[storeName]
			fmt.Fprintf(sb, "    %-30s %s records, %d fields\n",
				storeName, w.printer.Sprintf("%d", store.RecordCount), len(store.Schema))
		}
	}
}

// writeCaches writes the response cache section.
func (w *TextWriter) writeCaches(sb *strings.Builder, caches *model.CacheAnalysis) {
	sb.WriteString("\n[Caches]\n")

	if caches == nil {
		sb.WriteString("  Content Types: 0\n")
		sb.WriteString("  Cached Size:   0.00 MB\n")
		return
	}

	fmt.Fprintf(sb, "  Content Types: %d\n", len(caches.ContentTypes))
	fmt.Fprintf(sb, "  Cached Size:   %s\n", formatMB(caches.TotalCachedSize))

	if w.verbose {
		for _, contentType := range sortedKeys(caches.ContentTypes) {
			fmt.Fprintf(sb, "    %-40s %d\n", contentType, caches.ContentTypes[contentType])
		}
	}
}

// writeCodeGraph writes the dependency graph section.
func (w *TextWriter) writeCodeGraph(sb *strings.Builder, graph *model.CodeGraph) {
	sb.WriteString("\n[Code Graph]\n")

	var components, dependencies int
	if graph != nil {
		components = graph.Stats.TotalComponents
		dependencies = graph.Stats.TotalDependencies
	}

	fmt.Fprintf(sb, "  Components:   %d\n", components)
	fmt.Fprintf(sb, "  Dependencies: %d\n", dependencies)
	sb.WriteString("\n")
}
