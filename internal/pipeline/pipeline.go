package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/corpusworks/webcorpus/internal/model"
)

// Step is one stage of a corpus-building run. Steps execute in
// sequence, each receiving the session accumulated by the stages
// before it.
type Step interface {
	// Do executes the step against the session. Returning an error
	// stops the run; recoverable conditions should be recorded on
	// the session and logged instead.
	Do(ctx context.Context, session *model.Session) error

	// Name returns the step's name for logging.
	Name() string
}

// Pipeline executes an ordered series of steps against one session.
type Pipeline struct {
	// steps run in the order they were added.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError keeps the run going after a step fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing the remaining steps after one
// fails. Failed steps are logged and recorded on the session either
// way; the default is to stop at the first failure.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline. Steps are added with AddStep or
// AddSteps and run in insertion order.
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
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order against the session. Cancellation
// is checked before each step; steps handle their own timeouts while
// running. The session's Duration is updated when Execute returns,
// whatever the outcome.
//
// Returns the first step error unless continueOnError is set, in
// which case errors are recorded on the session and execution moves
// on to the next step.
func (p *Pipeline) Execute(ctx context.Context, session *model.Session) error {
	defer func() {
		session.Duration = time.Since(session.StartedAt)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("run cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			session.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"host", session.Host,
		)

		if err := step.Do(ctx, session); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"host", session.Host,
				"error", err,
			)

			session.Error = err
			session.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"host", session.Host,
			)
		}

		session.PerformedSteps = append(session.PerformedSteps, step.Name())
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
