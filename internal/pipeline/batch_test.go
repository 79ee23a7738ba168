package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dumpscan/dumpscan/internal/model"
)

// TestBatchProcessorProcess tests concurrent analysis of multiple dumps.
func TestBatchProcessorProcess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	bp := NewBatchProcessor(
		func(_ context.Context, dumpFile string) (*model.Analysis, error) {
			calls.Add(1)
			return model.NewAnalysis(dumpFile), nil
		},
		WithConcurrency(2),
		WithBatchLogger(quietLogger()),
	)

	files := []string{"a.json", "b.json", "c.json"}
	results, err := bp.Process(context.Background(), files)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	if calls.Load() != 3 {
		t.Errorf("analyze called %d times, want 3", calls.Load())
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, file := range files {
		if results[i] == nil || results[i].DumpFile != file {
			t.Errorf("results[%d] = %+v, want analysis of %q", i, results[i], file)
		}
	}
}

// TestBatchProcessorError tests error propagation from a failed dump.
func TestBatchProcessorError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("bad dump")
	bp := NewBatchProcessor(
		func(_ context.Context, dumpFile string) (*model.Analysis, error) {
			if dumpFile == "bad.json" {
				return nil, wantErr
			}
			return model.NewAnalysis(dumpFile), nil
		},
		WithBatchLogger(quietLogger()),
	)

	_, err := bp.Process(context.Background(), []string{"good.json", "bad.json"})
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

// TestBatchProcessorCallback tests streaming completion callbacks.
func TestBatchProcessorCallback(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(
		func(_ context.Context, dumpFile string) (*model.Analysis, error) {
			return model.NewAnalysis(dumpFile), nil
		},
		WithBatchLogger(quietLogger()),
	)

	seen := make(map[int]string)
	_, err := bp.ProcessWithCallback(context.Background(), []string{"a.json", "b.json"},
		func(analysis *model.Analysis, index int) {
			seen[index] = analysis.DumpFile
		})
	if err != nil {
		t.Fatalf("ProcessWithCallback returned error: %v", err)
	}

	if seen[0] != "a.json" || seen[1] != "b.json" {
		t.Errorf("callbacks saw %v", seen)
	}
}
