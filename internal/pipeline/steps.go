package pipeline

import (
	"context"
	"log/slog"

	"github.com/dumpscan/dumpscan/internal/analyzer"
	"github.com/dumpscan/dumpscan/internal/model"
)

// StorageStep summarizes the localStorage/sessionStorage section.
type StorageStep struct{}

// Name implements Step.
func (StorageStep) Name() string { return "storage" }

// Do implements Step.
func (StorageStep) Do(_ context.Context, dump *model.Dump, analysis *model.Analysis) error {
	analysis.Storage = analyzer.AnalyzeStorage(dump.Storage)
	return nil
}

// IndexedDBStep infers per-store schemas and field cardinality.
type IndexedDBStep struct {
	// Schema overrides the default first-record inference strategy.
	Schema analyzer.SchemaStrategy
}

// Name implements Step.
func (IndexedDBStep) Name() string { return "indexeddb" }

// Do implements Step.
func (s IndexedDBStep) Do(_ context.Context, dump *model.Dump, analysis *model.Analysis) error {
	strategy := s.Schema
	if strategy == nil {
		strategy = analyzer.InferSchema
	}
	analysis.IndexedDB = analyzer.AnalyzeIndexedDBWith(dump.IndexedDB, strategy)
	return nil
}

// CacheStep summarizes the response cache section.
type CacheStep struct{}

// Name implements Step.
func (CacheStep) Name() string { return "caches" }

// Do implements Step.
func (CacheStep) Do(_ context.Context, dump *model.Dump, analysis *model.Analysis) error {
	analysis.Caches = analyzer.AnalyzeCaches(dump.Caches)
	return nil
}

// CodeGraphStep recovers the script dependency graph from cached bodies.
type CodeGraphStep struct {
	// Extractor overrides the default regex-based import extractor.
	Extractor analyzer.ImportExtractor

	// Logger receives component collision warnings.
	Logger *slog.Logger
}

// Name implements Step.
func (CodeGraphStep) Name() string { return "code_graph" }

// Do implements Step.
func (s CodeGraphStep) Do(_ context.Context, dump *model.Dump, analysis *model.Analysis) error {
	opts := make([]analyzer.CodeGraphOption, 0, 2)
	if s.Extractor != nil {
		opts = append(opts, analyzer.WithExtractor(s.Extractor))
	}
	if s.Logger != nil {
		opts = append(opts, analyzer.WithCodeGraphLogger(s.Logger))
	}
	analysis.CodeGraph = analyzer.NewCodeGraphAnalyzer(opts...).Analyze(dump.Caches)
	return nil
}

// DefaultSteps returns the four analysis steps in their standard order.
func DefaultSteps(logger *slog.Logger) []Step {
	return []Step{
		StorageStep{},
		IndexedDBStep{},
		CacheStep{},
		CodeGraphStep{Logger: logger},
	}
}
