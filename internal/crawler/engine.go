package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/corpusworks/webcorpus/internal/fetcher"
	"github.com/corpusworks/webcorpus/internal/model"
	"github.com/corpusworks/webcorpus/internal/normalizer"
	"github.com/corpusworks/webcorpus/internal/robots"
)

// Engine coordinates page collection: it seeds the frontier, loads
// the host's robots rules once, and runs a pool of workers that claim
// URLs and fetch them. Crawl feeds discovered links back into the
// frontier; Fetch visits a fixed URL list instead.
type Engine struct {
	// fetcher retrieves and persists individual pages.
	fetcher *fetcher.Fetcher

	// loader fetches the robots rules for the seed host.
	loader *robots.Loader

	// workers is the number of concurrent page workers.
	workers int

	// maxPages caps the number of unique URLs the crawl will accept.
	maxPages int

	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of concurrent page workers.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMaxPages sets the maximum number of unique URLs to accept.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithLogger sets the logger for crawl progress and page outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine. A nil fetcher or loader falls back to one
// with default settings.
func New(f *fetcher.Fetcher, loader *robots.Loader, opts ...Option) *Engine {
	if f == nil {
		f = fetcher.New(nil)
	}
	if loader == nil {
		loader = robots.NewLoader(nil)
	}

	e := &Engine{
		fetcher:  f,
		loader:   loader,
		workers:  10,
		maxPages: 1000,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Result is the outcome of a finished crawl.
type Result struct {
	// Seed is the normalized start URL.
	Seed string

	// Pages holds the recorded outcome of every visited URL, sorted
	// by URL.
	Pages []*model.PageResult

	// Duration is the wall-clock time the crawl took.
	Duration time.Duration
}

// Counts returns how many pages were fetched, skipped, and failed.
func (r *Result) Counts() (fetched, skipped, failed int) {
	for _, p := range r.Pages {
		switch {
		case p.Outcome.Fetched():
			fetched++
		case p.Outcome.Skipped():
			skipped++
		case p.Outcome.Failed():
			failed++
		}
	}
	return fetched, skipped, failed
}

// FetchedURLs returns the URLs of successfully fetched pages, sorted
// by URL.
func (r *Result) FetchedURLs() []string {
	urls := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p.Outcome.Fetched() {
			urls = append(urls, p.URL)
		}
	}
	return urls
}

// Crawl discovers and collects all reachable same-host pages starting
// from seedURL. The seed must be an absolute https URL; anything else
// returns ErrBadSeed. Per-page failures never abort the crawl, they
// are recorded as outcomes on the result.
//
// On context cancellation Crawl returns the pages collected so far
// together with the context error.
func (e *Engine) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	start := time.Now()

	normalized, err := parseSeed(seedURL)
	if err != nil {
		return nil, err
	}
	policy := e.loader.Load(ctx, normalized)

	frontier := NewFrontier(e.maxPages, e.logger)
	frontier.Offer(normalized)

	e.logger.Info("starting crawl",
		"seed", normalized,
		"workers", e.workers,
		"max_pages", e.maxPages)

	result := e.run(ctx, frontier, normalized, policy, true, start)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// Fetch visits exactly the given URLs through the same worker pool,
// robots rules, and retry path as Crawl, but never follows links
// found on the fetched pages. Listed URLs that are not absolute https
// URLs on the seed's host are dropped. The seed itself must be an
// absolute https URL; anything else returns ErrBadSeed.
//
// On context cancellation Fetch returns the pages collected so far
// together with the context error.
func (e *Engine) Fetch(ctx context.Context, seedURL string, urls []string) (*Result, error) {
	start := time.Now()

	normalized, err := parseSeed(seedURL)
	if err != nil {
		return nil, err
	}
	policy := e.loader.Load(ctx, normalized)

	frontier := NewFrontier(e.maxPages, e.logger)
	offered := 0
	for _, raw := range urls {
		target, ok := sameHostTarget(raw, normalized)
		if !ok {
			e.logger.Debug("ignoring URL outside the corpus host", "url", raw)
			continue
		}
		frontier.Offer(target)
		offered++
	}

	e.logger.Info("starting fetch",
		"seed", normalized,
		"urls", offered,
		"workers", e.workers,
		"max_pages", e.maxPages)

	result := e.run(ctx, frontier, normalized, policy, false, start)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// run drains the frontier with the worker pool and assembles the
// result from the recorded visits.
func (e *Engine) run(ctx context.Context, frontier *Frontier, seedURL string, policy *robots.Policy, follow bool, start time.Time) *Result {
	// Unblock claimers when the context ends so the crawl drains
	// instead of hanging on a canceled fetch.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			frontier.Close()
		case <-watchDone:
		}
	}()

	var g errgroup.Group
	for i := 0; i < e.workers; i++ {
		g.Go(func() error {
			e.work(ctx, frontier, seedURL, policy, follow)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers record failures as page outcomes
	close(watchDone)
	frontier.Close()

	result := &Result{
		Seed:     seedURL,
		Pages:    frontier.Results(),
		Duration: time.Since(start),
	}

	fetched, skipped, failed := result.Counts()
	e.logger.Info("page collection finished",
		"pages", len(result.Pages),
		"fetched", fetched,
		"skipped", skipped,
		"failed", failed,
		"duration", result.Duration)

	return result
}

// parseSeed validates a seed URL and returns its normalized form.
func parseSeed(seedURL string) (string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSeed, err)
	}
	if seed.Scheme != "https" {
		return "", fmt.Errorf("%w: got scheme %q in %q", ErrBadSeed, seed.Scheme, seedURL)
	}
	if seed.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrBadSeed, seedURL)
	}
	return normalizer.Normalize(seed.String()), nil
}

// sameHostTarget normalizes a listed URL and reports whether it
// belongs to the corpus: absolute, https, and on the seed's host.
func sameHostTarget(raw, seedURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", false
	}
	target := normalizer.Normalize(u.String())
	if !normalizer.SameHost(target, seedURL) {
		return "", false
	}
	return target, true
}

// work claims URLs until the frontier drains or closes.
func (e *Engine) work(ctx context.Context, frontier *Frontier, seedURL string, policy *robots.Policy, follow bool) {
	for {
		pageURL, ok := frontier.ClaimNext()
		if !ok {
			return
		}
		frontier.MarkVisited(pageURL, e.visit(ctx, frontier, pageURL, seedURL, policy, follow))
	}
}

// visit processes one claimed URL: robots check, fetch, link
// extraction, and, when follow is set, offering the discovered links
// back to the frontier. It always returns a result; errors become
// outcomes.
func (e *Engine) visit(ctx context.Context, frontier *Frontier, pageURL, seedURL string, policy *robots.Policy, follow bool) *model.PageResult {
	page := &model.PageResult{URL: pageURL, FetchedAt: time.Now()}

	if !policy.CanFetch(pageURL) {
		page.Outcome = model.OutcomeSkippedDisallowed
		page.Error = fetcher.ErrDisallowed.Error()
		e.logger.Info("skipping URL disallowed by robots rules", "url", pageURL)
		return page
	}

	res, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		page.Outcome = classifyFetchError(err)
		page.Error = err.Error()
		e.logger.Warn("page not collected",
			"url", pageURL,
			"outcome", string(page.Outcome),
			"error", err)
		return page
	}

	page.Outcome = model.OutcomeFetched
	page.StatusCode = res.StatusCode
	page.ContentType = res.ContentType
	page.Title = res.Title
	page.ArtifactName = res.ArtifactName

	links := ExtractLinks(res.Document, pageURL, seedURL, policy)
	page.Links = len(links)

	if follow {
		frontier.Offer(links...)
	}
	e.logger.Info("page collected",
		"url", pageURL,
		"status", res.StatusCode,
		"links", len(links))
	return page
}

// classifyFetchError maps a fetch error to a page outcome.
func classifyFetchError(err error) model.Outcome {
	switch {
	case errors.Is(err, fetcher.ErrNotHTML):
		return model.OutcomeSkippedNotHTML
	case errors.Is(err, fetcher.ErrDisallowed):
		return model.OutcomeSkippedDisallowed
	case errors.Is(err, fetcher.ErrExhaustedRetries):
		return model.OutcomeFailedRetries
	default:
		return model.OutcomeFailedUnexpected
	}
}
