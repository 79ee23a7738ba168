package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dumpscan/dumpscan/internal/model"
)

// Writer defines the interface for analysis report output.
// Implementations write the same analysis in different formats, so they
// can be used interchangeably and composed for multi-format output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(analysis *model.Analysis) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// Useful for outputting to both terminal and file.
//
// Design decision: This is a separate type rather than io.MultiWriter
// because our Writer interface writes reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written; stops on the first error encountered.
func (m *MultiWriter) Write(analysis *model.Analysis) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(analysis)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sortedKeys returns the map's keys in ascending order.
// Report output must be deterministic, so every map iteration in this
// package goes through it.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatKB renders a byte count in kilobytes with two decimals.
func formatKB(bytes int64) string {
	return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
}

// formatMB renders a byte count in megabytes with two decimals.
func formatMB(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}
