package model

import (
	"net/url"
	"time"
)

// Session modes. A session is produced either by a discovery crawl
// (link following) or by fetching the URLs listed in a published
// sitemap.
const (
	// ModeCrawl marks sessions produced by link-discovery crawling.
	ModeCrawl = "crawl"

	// ModeFetch marks sessions produced by sitemap-driven fetching.
	ModeFetch = "fetch"
)

// Session is the result of one crawl or fetch run against a single
// host. It accumulates state as pipeline steps execute and is the
// unit persisted to the history database.
type Session struct {
	// BaseURL is the normalized seed URL the run started from.
	BaseURL string `json:"base_url"`

	// Host is the hostname portion of BaseURL. All visited URLs
	// share this host.
	Host string `json:"host"`

	// Mode records how the corpus was gathered: ModeCrawl or ModeFetch.
	Mode string `json:"mode"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Pages holds one result per visited URL, in completion order.
	Pages []*PageResult `json:"pages,omitempty"`

	// SitemapPath is where the synthesized sitemap was written.
	// Empty until the sitemap step runs.
	SitemapPath string `json:"sitemap_path,omitempty"`

	// OutputDir is the corpus root directory for this run.
	OutputDir string `json:"output_dir"`

	// ConvertedCount is the number of Markdown documents produced
	// when conversion was chained onto the run.
	ConvertedCount int `json:"converted_count,omitempty"`

	// PerformedSteps lists pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true when the run was cancelled before completion.
	TimedOut bool `json:"timed_out"`

	// Error holds the error that stopped the run, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewSession creates a Session for the given seed URL and mode.
// The host is extracted from the seed; it is empty when the seed
// does not parse, which the crawl engine rejects before running.
func NewSession(baseURL, mode string) *Session {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	return &Session{
		BaseURL:   baseURL,
		Host:      host,
		Mode:      mode,
		StartedAt: time.Now(),
		Pages:     make([]*PageResult, 0),
	}
}

// AddPage appends a page result to the session.
func (s *Session) AddPage(page *PageResult) {
	s.Pages = append(s.Pages, page)
}

// FetchedCount returns the number of successfully persisted pages.
func (s *Session) FetchedCount() int {
	return s.countIf(Outcome.Fetched)
}

// SkippedCount returns the number of pages skipped by robots rules
// or content-type checks.
func (s *Session) SkippedCount() int {
	return s.countIf(Outcome.Skipped)
}

// FailedCount returns the number of pages whose fetch failed.
func (s *Session) FailedCount() int {
	return s.countIf(Outcome.Failed)
}

// FetchedURLs returns the normalized URLs of all fetched pages,
// in completion order.
func (s *Session) FetchedURLs() []string {
	urls := make([]string, 0, len(s.Pages))
	for _, p := range s.Pages {
		if p.Outcome.Fetched() {
			urls = append(urls, p.URL)
		}
	}
	return urls
}

// countIf counts pages whose outcome satisfies the predicate.
func (s *Session) countIf(pred func(Outcome) bool) int {
	n := 0
	for _, p := range s.Pages {
		if pred(p.Outcome) {
			n++
		}
	}
	return n
}
