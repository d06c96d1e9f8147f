package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpusworks/webcorpus/internal/model"
	"github.com/corpusworks/webcorpus/internal/normalizer"
)

// BatchProcessor runs one pipeline per seed URL with a bounded number
// of concurrent runs.
type BatchProcessor struct {
	// mode is recorded on every session the batch creates, ModeCrawl
	// or ModeFetch.
	mode string

	// pipelineFactory builds a fresh pipeline for each seed, keeping
	// state from leaking between runs.
	pipelineFactory func(baseURL string) (*Pipeline, error)

	// concurrency is the maximum number of runs in flight.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results holds the finished sessions, ordered like the seeds.
	results []*model.Session
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

// WithConcurrency sets the maximum number of concurrent runs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. The factory is called
// once per seed so every run gets its own pipeline; factory failures
// are recorded on that seed's session without stopping the others.
func NewBatchProcessor(mode string, pipelineFactory func(baseURL string) (*Pipeline, error), opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		mode:            mode,
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.Session, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline for every seed, at most concurrency
// runs at a time. Per-seed failures are recorded on the seed's
// session and never stop the other runs; the returned error reports
// cancellation only. Results keep the order of the seeds.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, seeds []string) ([]*model.Session, error) {
	bp.logger.Info("starting batch run",
		"seeds", len(seeds),
		"concurrency", bp.concurrency,
	)

	start := time.Now()

	bp.results = make([]*model.Session, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("processing seed",
				"seed", seed,
				"index", i+1,
				"total", len(seeds),
			)

			session := model.NewSession(normalizer.Normalize(seed), bp.mode)

			p, err := bp.pipelineFactory(seed)
			if err != nil {
				session.Error = err
				session.ErrorMessage = err.Error()
			} else {
				err = p.Execute(ctx, session)
			}

			bp.mu.Lock()
			bp.results[i] = session
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("seed run failed",
					"seed", seed,
					"error", err,
				)
				return nil
			}

			bp.logger.Info("seed run completed", "seed", seed)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch run complete",
		"seeds", len(seeds),
		"elapsed", time.Since(start),
	)

	return bp.results, err
}
