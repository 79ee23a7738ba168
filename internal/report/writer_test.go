package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dumpscan/dumpscan/internal/model"
)

// fullAnalysis builds an analysis with every section populated.
func fullAnalysis() *model.Analysis {
	analysis := sampleAnalysis()
	two := 2
	analysis.Storage = &model.StorageAnalysis{
		Local: model.StoreStats{
			TotalKeys:      3,
			TotalSizeBytes: 3072,
			AvgValueSize:   1024,
			KeyPatterns:    map[string]int{"user_*": 2, "theme": 1},
			ValueSizesBytes: model.SizeDistribution{
				Min: 512, Max: 2048, Median: 512,
			},
			DataTypes: map[string]int{"JSON_object": 2, "string": 1},
			Cardinality: map[string]model.KeyCardinality{
				"user_1": {Type: "object", Cardinality: &two},
			},
		},
	}
	analysis.Caches = &model.CacheAnalysis{
		ContentTypes:    map[string]int{"application/javascript": 2},
		TotalCachedSize: 4096,
	}
	analysis.CodeGraph = &model.CodeGraph{
		Components: map[string]model.Component{
			"app": {URL: "https://cdn.example/app-abc.js", Size: 100, Imports: []string{"react"}},
		},
		Graph: map[string][]string{"app": {"react"}},
		Stats: model.GraphStats{TotalComponents: 1, TotalDependencies: 1},
	}
	return analysis
}

// TestTextWriter tests the terminal summary output.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(fullAnalysis())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"Storage Dump Analysis: dump.json",
		"localStorage:   3 keys",
		"Databases:     1",
		"Total Records: 10",
		"Components:   1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestTextWriterEmptyAnalysis tests that absent sections render as zeros.
func TestTextWriterEmptyAnalysis(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTextWriter(&buf).Write(model.NewAnalysis("empty.json")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"localStorage:   0 keys",
		"Databases:     0",
		"Components:   0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestTextWriterVerbose tests per-pattern detail.
func TestTextWriterVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTextWriter(&buf, WithVerbose(true)).Write(fullAnalysis()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "user_*") {
		t.Errorf("verbose output missing key patterns:\n%s", buf.String())
	}
}

// TestTextWriterDeterministic tests that repeated writes are identical.
func TestTextWriterDeterministic(t *testing.T) {
	t.Parallel()

	analysis := fullAnalysis()
	var first, second bytes.Buffer
	if _, err := NewTextWriter(&first, WithVerbose(true)).Write(analysis); err != nil {
		t.Fatal(err)
	}
	if _, err := NewTextWriter(&second, WithVerbose(true)).Write(analysis); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Error("output differs between identical writes")
	}
}

// TestJSONWriter tests compact and indented JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output decodes back", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(fullAnalysis()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if _, ok := decoded["storage"]; !ok {
			t.Error("decoded output lacks storage section")
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(fullAnalysis()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty output is not indented")
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(fullAnalysis()); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("Version = %q, want 1.2.3", wrapped.Version)
		}
		if wrapped.Analysis == nil {
			t.Error("wrapped analysis missing")
		}
	})
}

// TestMarkdownWriter tests the full markdown report.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(fullAnalysis()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Storage Dump Analysis Report",
		"## Executive Summary",
		"**localStorage**: 3 keys",
		"#### Database: app (v2)",
		"`id`",
		"100%",
		"### Code Analysis",
		"## Metadata",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

// TestMarkdownWriterEmptyAnalysis tests that an empty analysis still
// produces a complete document.
func TestMarkdownWriterEmptyAnalysis(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(model.NewAnalysis("")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Storage Dump Analysis Report",
		"**localStorage**: 0 keys",
		"**Databases**: 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b))

	if _, err := mw.Write(fullAnalysis()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected output in both writers")
	}
}
