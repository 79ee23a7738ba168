// Package loader reads and validates storage dump files.
//
// The loader is the external collaborator of the analysis core: it turns
// raw bytes into the in-memory document the analyzers consume. Structural
// validation happens here and only here; the analyzers assume a document
// already shaped per the model package.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dumpscan/dumpscan/internal/model"
)

// Sections every dump must carry. Everything else is optional and degrades
// to an empty collection during analysis.
var requiredSections = []string{"metadata", "storage"}

// Sentinel errors returned by Load and Validate.
var (
	// ErrInvalidJSON is returned when the dump file is not valid JSON.
	ErrInvalidJSON = errors.New("dump is not valid JSON")

	// ErrMissingSection is returned when a required top-level section is
	// absent. Use errors.Is to detect it; the wrapped message names the
	// section.
	ErrMissingSection = errors.New("dump is missing a required section")
)

// Load reads, decodes, and validates a dump file.
func Load(path string) (*model.Dump, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided dump path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	dump, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dump, nil
}

// LoadReader decodes and validates a dump from a reader.
//
// The raw top-level sections are retained in Dump.Sections so the export
// command can re-emit them verbatim, including sections the typed model
// does not know about.
func LoadReader(r io.Reader) (*model.Dump, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dump: %w", err)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, err)
	}

	if err := validateSections(sections); err != nil {
		return nil, err
	}

	var dump model.Dump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, err)
	}
	dump.Sections = sections

	return &dump, nil
}

// validateSections checks that every required top-level section is present.
func validateSections(sections map[string]json.RawMessage) error {
	for _, name := range requiredSections {
		if _, ok := sections[name]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingSection, name)
		}
	}
	return nil
}
