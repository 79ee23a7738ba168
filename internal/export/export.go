// Package export writes selected dump sections to files.
//
// Export re-emits raw top-level sections of a dump; the analyzers are not
// involved. Sections can be written as pretty-printed JSON, gzipped JSON,
// or JSONL (one line per element of an array section).
package export

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dumpscan/dumpscan/internal/model"
)

// Format is a section export format.
type Format string

// Supported export formats.
const (
	FormatJSON  Format = "json"
	FormatGzip  Format = "gz"
	FormatJSONL Format = "jsonl"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatGzip, FormatJSONL:
		return true
	default:
		return false
	}
}

// extension returns the output file extension for the format.
func (f Format) extension() string {
	switch f {
	case FormatGzip:
		return ".jsonz"
	case FormatJSONL:
		return ".jsonl"
	default:
		return ".json"
	}
}

// Sentinel errors returned by the exporter.
var (
	// ErrSectionNotFound is returned when a requested section does not
	// exist in the dump (case-insensitive match).
	ErrSectionNotFound = errors.New("section not found in dump")

	// ErrNotAnArray is returned for JSONL export of a non-array section.
	ErrNotAnArray = errors.New("jsonl export requires an array section")
)

// Result describes one exported section file.
type Result struct {
	Section string
	Path    string
	Size    int64
}

// Exporter writes dump sections into an output directory.
type Exporter struct {
	outputDir string
}

// New creates an Exporter. The output directory is created on first use.
func New(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir}
}

// ExportSections writes each named section in the given format.
// Section names match the dump's top-level keys case-insensitively, the
// way users type them on the command line ("indexeddb" finds "indexedDB").
func (e *Exporter) ExportSections(dump *model.Dump, sections []string, format Format) ([]Result, error) {
	if err := os.MkdirAll(e.outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Case-insensitive view of the dump's top-level keys.
	keys := make(map[string]string, len(dump.Sections))
	for k := range dump.Sections {
		keys[strings.ToLower(k)] = k
	}

	results := make([]Result, 0, len(sections))
	for _, section := range sections {
		lower := strings.ToLower(strings.TrimSpace(section))

		actual, ok := keys[lower]
		if !ok {
			return results, fmt.Errorf("%w: %q", ErrSectionNotFound, section)
		}

		path := filepath.Join(e.outputDir, e.fileName(dump, lower, format))
		size, err := e.writeSection(dump.Sections[actual], path, format)
		if err != nil {
			return results, fmt.Errorf("failed to export section %q: %w", section, err)
		}

		results = append(results, Result{Section: lower, Path: path, Size: size})
	}

	return results, nil
}

// fileName builds "dump_<section>_<timestamp>" with the dump's metadata
// timestamp truncated to minutes and made filesystem-safe.
func (e *Exporter) fileName(dump *model.Dump, section string, format Format) string {
	ts := dump.Metadata.Timestamp
	if len(ts) > 16 {
		ts = ts[:16]
	}
	ts = strings.ReplaceAll(ts, ":", "-")

	return "dump_" + section + "_" + ts + format.extension()
}

// writeSection writes one raw section to path. Returns the file size.
func (e *Exporter) writeSection(raw json.RawMessage, path string, format Format) (int64, error) {
	f, err := os.Create(path) //nolint:gosec // Path is derived from the configured output dir
	if err != nil {
		return 0, err
	}

	var werr error
	switch format {
	case FormatGzip:
		werr = writeGzipJSON(f, raw)
	case FormatJSONL:
		werr = writeJSONL(f, raw)
	default:
		werr = writeIndentedJSON(f, raw)
	}

	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return 0, werr
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// writeIndentedJSON re-indents the raw section for readability.
func writeIndentedJSON(f *os.File, raw json.RawMessage) error {
	pretty, err := indent(raw)
	if err != nil {
		return err
	}
	_, err = f.Write(pretty)
	return err
}

// writeGzipJSON writes the indented section through a gzip writer.
func writeGzipJSON(f *os.File, raw json.RawMessage) error {
	pretty, err := indent(raw)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(pretty); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}

// writeJSONL writes one compact JSON line per element of an array section.
func writeJSONL(f *os.File, raw json.RawMessage) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ErrNotAnArray
	}

	for _, item := range items {
		compact, err := compact(item)
		if err != nil {
			return err
		}
		if _, err := f.Write(append(compact, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// indent normalizes raw JSON into two-space indented form.
func indent(raw json.RawMessage) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// compact normalizes raw JSON into its compact form.
func compact(raw json.RawMessage) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
