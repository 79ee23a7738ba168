package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dumpscan/dumpscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// AnalyzeFunc loads and analyzes a single dump file.
// The BatchProcessor stays agnostic of how dumps are loaded; the caller
// wires the loader and pipeline together in this function.
type AnalyzeFunc func(ctx context.Context, dumpFile string) (*model.Analysis, error)

// BatchProcessor analyzes multiple dump files concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
// Each dump still gets a sequential pipeline of its own; concurrency is
// across dumps, never within one.
type BatchProcessor struct {
	// analyze processes one dump file.
	analyze AnalyzeFunc

	// concurrency is the maximum number of dumps analyzed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed analyses. Access is synchronized via mu.
	results []*model.Analysis
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around an AnalyzeFunc.
func NewBatchProcessor(analyze AnalyzeFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyze:     analyze,
		concurrency: 4,
		results:     make([]*model.Analysis, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Process analyzes all dump files and returns the completed analyses in
// input order. A failed dump leaves a nil slot in the result and is
// logged; the first error is returned after the whole batch drains.
func (b *BatchProcessor) Process(ctx context.Context, dumpFiles []string) ([]*model.Analysis, error) {
	return b.ProcessWithCallback(ctx, dumpFiles, nil)
}

// ProcessWithCallback is Process with a per-completion callback, invoked
// under the processor's lock so callers can stream output safely.
func (b *BatchProcessor) ProcessWithCallback(
	ctx context.Context,
	dumpFiles []string,
	callback func(analysis *model.Analysis, index int),
) ([]*model.Analysis, error) {
	b.mu.Lock()
	b.results = make([]*model.Analysis, len(dumpFiles))
	b.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, dumpFile := range dumpFiles {
		i, dumpFile := i, dumpFile
		g.Go(func() error {
			b.logger.Debug("analyzing dump", "file", dumpFile, "index", i)

			analysis, err := b.analyze(ctx, dumpFile)
			if err != nil {
				b.logger.Error("dump analysis failed", "file", dumpFile, "error", err)
				return err
			}

			b.mu.Lock()
			b.results[i] = analysis
			if callback != nil {
				callback(analysis, i)
			}
			b.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()

	b.mu.Lock()
	results := b.results
	b.mu.Unlock()

	return results, err
}
