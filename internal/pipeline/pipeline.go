package pipeline

import (
	"context"
	"log/slog"

	"github.com/dumpscan/dumpscan/internal/model"
)

// Step defines the interface that all analysis steps must implement.
// Steps run in sequence; each receives the read-only dump and writes its
// section of the accumulated analysis.
//
// Design decision: We use an interface rather than function types because
// it allows steps to carry configuration state (the code graph step holds
// its extractor) and provides a Name() method for logging.
type Step interface {
	// Do executes the step. The dump is read-only; results are written
	// into analysis. Analysis steps are permissive by design and should
	// only return an error for a broken input contract.
	Do(ctx context.Context, dump *model.Dump, analysis *model.Analysis) error

	// Name returns the step's name for logging and progress output.
	Name() string
}

// Pipeline executes analysis steps in order against a single dump.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to keep running steps after one
	// fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to keep executing steps even
// when one fails. A failed section simply stays absent from the analysis;
// the report layer renders absent sections as empty.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep or AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// Cancellation is checked between steps; the analyzers themselves are
// short, synchronous batch computations with no suspension points.
//
// Returns the first error encountered if continueOnError is false, or nil
// once all steps have run.
func (p *Pipeline) Execute(ctx context.Context, dump *model.Dump, analysis *model.Analysis) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"dump", analysis.DumpFile,
		)

		if err := step.Do(ctx, dump, analysis); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"dump", analysis.DumpFile,
				"error", err,
			)

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"dump", analysis.DumpFile,
			)
		}

		analysis.PerformedSteps = append(analysis.PerformedSteps, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
