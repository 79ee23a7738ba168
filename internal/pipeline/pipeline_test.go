package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/dumpscan/dumpscan/internal/model"
)

// quietLogger returns a logger that discards output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingStep always returns an error.
type failingStep struct{}

func (failingStep) Name() string { return "failing" }
func (failingStep) Do(context.Context, *model.Dump, *model.Analysis) error {
	return errors.New("boom")
}

// markerStep records that it ran.
type markerStep struct {
	name string
	ran  *bool
}

func (s markerStep) Name() string { return s.name }
func (s markerStep) Do(context.Context, *model.Dump, *model.Analysis) error {
	*s.ran = true
	return nil
}

// TestPipelineExecute tests sequential step execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	var first, second bool
	p := New(WithLogger(quietLogger()))
	p.AddSteps(
		markerStep{name: "first", ran: &first},
		markerStep{name: "second", ran: &second},
	)

	analysis := model.NewAnalysis("dump.json")
	if err := p.Execute(context.Background(), &model.Dump{}, analysis); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if !first || !second {
		t.Errorf("steps ran = %v/%v, want both", first, second)
	}
	if want := []string{"first", "second"}; !reflect.DeepEqual(analysis.PerformedSteps, want) {
		t.Errorf("PerformedSteps = %v, want %v", analysis.PerformedSteps, want)
	}
}

// TestPipelineStopsOnError tests the default fail-fast behavior.
func TestPipelineStopsOnError(t *testing.T) {
	t.Parallel()

	var after bool
	p := New(WithLogger(quietLogger()))
	p.AddSteps(failingStep{}, markerStep{name: "after", ran: &after})

	err := p.Execute(context.Background(), &model.Dump{}, model.NewAnalysis(""))
	if err == nil {
		t.Fatal("expected error from failing step")
	}
	if after {
		t.Error("step after failure should not run without continueOnError")
	}
}

// TestPipelineContinueOnError tests that later steps still run.
func TestPipelineContinueOnError(t *testing.T) {
	t.Parallel()

	var after bool
	p := New(WithLogger(quietLogger()), WithContinueOnError(true))
	p.AddSteps(failingStep{}, markerStep{name: "after", ran: &after})

	if err := p.Execute(context.Background(), &model.Dump{}, model.NewAnalysis("")); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !after {
		t.Error("step after failure should run with continueOnError")
	}
}

// TestPipelineCancellation tests that a cancelled context stops execution.
func TestPipelineCancellation(t *testing.T) {
	t.Parallel()

	var ran bool
	p := New(WithLogger(quietLogger()))
	p.AddStep(markerStep{name: "never", ran: &ran})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Execute(ctx, &model.Dump{}, model.NewAnalysis("")); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if ran {
		t.Error("no step should run after cancellation")
	}
}

// TestDefaultSteps tests that the standard pipeline populates every
// analysis section.
func TestDefaultSteps(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(quietLogger()))
	p.AddSteps(DefaultSteps(quietLogger())...)

	if p.StepCount() != 4 {
		t.Fatalf("StepCount = %d, want 4", p.StepCount())
	}
	want := []string{"storage", "indexeddb", "caches", "code_graph"}
	if !reflect.DeepEqual(p.StepNames(), want) {
		t.Errorf("StepNames = %v, want %v", p.StepNames(), want)
	}

	dump := &model.Dump{
		Storage: model.Storage{
			Local: model.KeyValueStore{"user_1": {Value: "x", Size: 1}},
		},
		IndexedDB: []model.Database{
			{Name: "app", Version: 1, Stores: []model.ObjectStore{
				{Name: "s", Records: []any{map[string]any{"id": "a"}}},
			}},
		},
	}

	analysis := model.NewAnalysis("dump.json")
	if err := p.Execute(context.Background(), dump, analysis); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if analysis.Storage == nil {
		t.Error("Storage section not populated")
	}
	if analysis.IndexedDB == nil {
		t.Error("IndexedDB section not populated")
	}
	if analysis.Caches == nil {
		t.Error("Caches section not populated")
	}
	if analysis.CodeGraph == nil {
		t.Error("CodeGraph section not populated")
	}
}
