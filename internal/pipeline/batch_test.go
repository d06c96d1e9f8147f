package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corpusworks/webcorpus/internal/model"
)

func noopFactory(_ string) (*Pipeline, error) {
	return New(WithLogger(discardLogger())), nil
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(model.ModeCrawl, noopFactory)

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(model.ModeCrawl, noopFactory, WithConcurrency(5))

		if bp.concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(model.ModeCrawl, noopFactory, WithConcurrency(0))

		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})

	t.Run("applies WithBatchLogger option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(model.ModeCrawl, noopFactory, WithBatchLogger(nil))

		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("processes all seeds", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(model.ModeCrawl, func(_ string) (*Pipeline, error) {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{
				name: "counter",
				doFunc: func(_ context.Context, _ *model.Session) error {
					processedCount.Add(1)
					return nil
				},
			})
			return p, nil
		}, WithBatchLogger(discardLogger()))

		seeds := []string{
			"https://a.example.com",
			"https://b.example.com",
			"https://c.example.com",
		}

		results, err := bp.ProcessBatch(context.Background(), seeds)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
		for i, session := range results {
			if session.Mode != model.ModeCrawl {
				t.Errorf("result[%d]: expected mode %q, got %q", i, model.ModeCrawl, session.Mode)
			}
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var maxConcurrent atomic.Int32
		var currentConcurrent atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(model.ModeCrawl,
			func(_ string) (*Pipeline, error) {
				p := New(WithLogger(discardLogger()))
				p.AddStep(&mockStep{
					name: "concurrent-counter",
					doFunc: func(_ context.Context, _ *model.Session) error {
						current := currentConcurrent.Add(1)

						mu.Lock()
						if current > maxConcurrent.Load() {
							maxConcurrent.Store(current)
						}
						mu.Unlock()

						time.Sleep(50 * time.Millisecond)

						currentConcurrent.Add(-1)
						return nil
					},
				})
				return p, nil
			},
			WithConcurrency(2),
			WithBatchLogger(discardLogger()),
		)

		seeds := make([]string, 10)
		for i := range seeds {
			seeds[i] = "https://docs.example.com"
		}

		if _, err := bp.ProcessBatch(context.Background(), seeds); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if maxConcurrent.Load() > 2 {
			t.Errorf("max concurrent was %d, expected <= 2", maxConcurrent.Load())
		}
	})

	t.Run("maintains seed order", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(model.ModeCrawl, func(_ string) (*Pipeline, error) {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "noop"})
			return p, nil
		}, WithBatchLogger(discardLogger()))

		seeds := []string{
			"https://first.example.com",
			"https://second.example.com",
			"https://third.example.com",
		}
		hosts := []string{
			"first.example.com",
			"second.example.com",
			"third.example.com",
		}

		results, err := bp.ProcessBatch(context.Background(), seeds)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, session := range results {
			if session.Host != hosts[i] {
				t.Errorf("result[%d]: got host %q, expected %q", i, session.Host, hosts[i])
			}
		}
	})

	t.Run("continues after individual run failure", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(model.ModeCrawl, func(_ string) (*Pipeline, error) {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{
				name: "sometimes-fails",
				doFunc: func(_ context.Context, session *model.Session) error {
					processedCount.Add(1)
					if session.Host == "fail.example.com" {
						return errors.New("simulated run failure")
					}
					return nil
				},
			})
			return p, nil
		}, WithBatchLogger(discardLogger()))

		seeds := []string{
			"https://first.example.com",
			"https://fail.example.com",
			"https://third.example.com",
		}

		results, err := bp.ProcessBatch(context.Background(), seeds)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
		if results[1].Error == nil {
			t.Error("expected error in second result")
		}
		if results[0].Error != nil {
			t.Errorf("unexpected error in first result: %v", results[0].Error)
		}
	})

	t.Run("records factory failures", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(model.ModeCrawl, func(baseURL string) (*Pipeline, error) {
			if strings.Contains(baseURL, "bad") {
				return nil, errors.New("no store for this host")
			}
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "noop"})
			return p, nil
		}, WithBatchLogger(discardLogger()))

		seeds := []string{
			"https://bad.example.com",
			"https://good.example.com",
		}

		results, err := bp.ProcessBatch(context.Background(), seeds)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results[0].ErrorMessage == "" {
			t.Error("expected factory error recorded on first result")
		}
		if results[1].ErrorMessage != "" {
			t.Errorf("unexpected error on second result: %q", results[1].ErrorMessage)
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var startedCount atomic.Int32

		bp := NewBatchProcessor(model.ModeCrawl,
			func(_ string) (*Pipeline, error) {
				p := New(WithLogger(discardLogger()))
				p.AddStep(&mockStep{
					name: "slow-step",
					doFunc: func(ctx context.Context, _ *model.Session) error {
						startedCount.Add(1)
						select {
						case <-ctx.Done():
							return ctx.Err()
						case <-time.After(time.Second):
							return nil
						}
					},
				})
				return p, nil
			},
			WithConcurrency(2),
			WithBatchLogger(discardLogger()),
		)

		seeds := make([]string, 10)
		for i := range seeds {
			seeds[i] = "https://docs.example.com"
		}

		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		_, err := bp.ProcessBatch(ctx, seeds)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		//nolint:gosec // len(seeds) is small, no overflow risk
		if startedCount.Load() >= int32(len(seeds)) {
			t.Error("expected some seeds to not start due to cancellation")
		}
	})
}
