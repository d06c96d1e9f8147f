package crawler

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/corpusworks/webcorpus/internal/model"
)

// Frontier is the shared URL queue of a crawl. It tracks every URL in
// exactly one of three states: pending (discovered, waiting to be
// claimed), in flight (claimed by a worker), or visited (finished,
// with its outcome recorded).
//
// All methods are safe for concurrent use. URLs must be normalized
// before they are offered; the frontier compares them as strings.
type Frontier struct {
	// mu guards all fields below. cond signals claimers when work
	// arrives or the crawl drains.
	mu   sync.Mutex
	cond *sync.Cond

	// pending holds discovered URLs in FIFO order; queued mirrors it
	// for membership checks.
	pending []string
	queued  map[string]struct{}

	// inFlight holds URLs currently claimed by a worker.
	inFlight map[string]struct{}

	// visited holds the outcome of every finished URL.
	visited map[string]*model.PageResult

	// maxPages caps visited+pending+inFlight. Once reached, Offer
	// rejects new URLs.
	maxPages int

	// capped records that the ceiling was hit so it is logged once.
	capped bool

	// closed stops all claiming, set by Close.
	closed bool

	logger *slog.Logger
}

// NewFrontier creates a Frontier that accepts at most maxPages unique
// URLs. A nil logger falls back to slog.Default().
func NewFrontier(maxPages int, logger *slog.Logger) *Frontier {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Frontier{
		queued:   make(map[string]struct{}),
		inFlight: make(map[string]struct{}),
		visited:  make(map[string]*model.PageResult),
		maxPages: maxPages,
		logger:   logger,
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Offer adds URLs to the pending queue, dropping any URL already
// known in any state and anything beyond the page ceiling. Returns
// the number of URLs accepted.
func (f *Frontier) Offer(urls ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	accepted := 0
	for _, u := range urls {
		if f.closed {
			break
		}
		if f.known(u) {
			continue
		}
		if f.total() >= f.maxPages {
			if !f.capped {
				f.capped = true
				f.logger.Warn("page ceiling reached, dropping newly discovered URLs", "max_pages", f.maxPages)
			}
			break
		}
		f.pending = append(f.pending, u)
		f.queued[u] = struct{}{}
		accepted++
	}

	if accepted > 0 {
		f.cond.Broadcast()
	}
	return accepted
}

// ClaimNext blocks until a URL is available, the crawl drains, or the
// frontier is closed. It moves the returned URL from pending to in
// flight. The second return is false when no more work will ever
// arrive and the caller should stop.
func (f *Frontier) ClaimNext() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed {
			return "", false
		}
		if len(f.pending) > 0 {
			u := f.pending[0]
			f.pending = f.pending[1:]
			delete(f.queued, u)
			f.inFlight[u] = struct{}{}
			return u, true
		}
		// Nothing pending and nothing in flight means no worker can
		// discover more URLs: the crawl is complete.
		if len(f.inFlight) == 0 {
			return "", false
		}
		f.cond.Wait()
	}
}

// MarkVisited records the outcome of a claimed URL and releases it
// from the in-flight set. Waiting claimers are woken so they can
// re-check for work or drain.
func (f *Frontier) MarkVisited(pageURL string, result *model.PageResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.inFlight, pageURL)
	if _, ok := f.visited[pageURL]; !ok {
		f.visited[pageURL] = result
	}
	f.cond.Broadcast()
}

// Close stops all claiming immediately. Blocked ClaimNext calls
// return false. Close is safe to call more than once.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}

// Results returns the recorded outcomes sorted by URL.
func (f *Frontier) Results() []*model.PageResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]*model.PageResult, 0, len(f.visited))
	for _, r := range f.visited {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].URL < results[j].URL
	})
	return results
}

// Counts returns the number of URLs in each state.
func (f *Frontier) Counts() (visited, pending, inFlight int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited), len(f.pending), len(f.inFlight)
}

// known reports whether a URL is already tracked in any state.
// Callers must hold mu.
func (f *Frontier) known(u string) bool {
	if _, ok := f.queued[u]; ok {
		return true
	}
	if _, ok := f.inFlight[u]; ok {
		return true
	}
	_, ok := f.visited[u]
	return ok
}

// total is the number of unique URLs accepted so far. Callers must
// hold mu.
func (f *Frontier) total() int {
	return len(f.visited) + len(f.queued) + len(f.inFlight)
}
