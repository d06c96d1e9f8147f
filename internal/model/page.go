package model

import "time"

// Outcome classifies the terminal state of a single URL visit.
// Every URL claimed from the frontier ends in exactly one outcome,
// and the outcome never changes afterwards.
type Outcome string

// Outcome values for visited URLs.
const (
	// OutcomeFetched means the page was retrieved, decoded, and its
	// artifact was persisted.
	OutcomeFetched Outcome = "fetched"

	// OutcomeSkippedDisallowed means robots.txt rules forbid fetching
	// the URL. No request was sent.
	OutcomeSkippedDisallowed Outcome = "skipped_disallowed"

	// OutcomeSkippedNotHTML means the server responded but the
	// Content-Type was not text/html. The response body is discarded.
	OutcomeSkippedNotHTML Outcome = "skipped_not_html"

	// OutcomeFailedRetries means every fetch attempt failed with a
	// transport error or non-2xx status and the retry budget ran out.
	OutcomeFailedRetries Outcome = "failed_retries"

	// OutcomeFailedUnexpected means decoding, parsing, or persisting
	// the page failed after a successful HTTP exchange.
	OutcomeFailedUnexpected Outcome = "failed_unexpected"
)

// Fetched reports whether the outcome represents a successfully
// persisted page.
func (o Outcome) Fetched() bool {
	return o == OutcomeFetched
}

// Skipped reports whether the outcome represents an intentionally
// skipped page (robots rules or non-HTML content).
func (o Outcome) Skipped() bool {
	return o == OutcomeSkippedDisallowed || o == OutcomeSkippedNotHTML
}

// Failed reports whether the outcome represents a fetch failure.
func (o Outcome) Failed() bool {
	return o == OutcomeFailedRetries || o == OutcomeFailedUnexpected
}

// PageResult records the terminal state of one visited URL.
// It carries only summary data; page bodies live in the artifact
// store, not in memory.
type PageResult struct {
	// URL is the normalized URL that was visited.
	URL string `json:"url"`

	// Outcome classifies how the visit ended.
	Outcome Outcome `json:"outcome"`

	// StatusCode is the HTTP status of the last response received.
	// Zero when no response arrived (transport errors, robots skips).
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the Content-Type header of the last response.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title from the <title> element.
	// Empty for non-HTML responses and failed fetches.
	Title string `json:"title,omitempty"`

	// ArtifactName is the file name of the persisted HTML artifact,
	// relative to the articles directory. Empty unless fetched.
	ArtifactName string `json:"artifact_name,omitempty"`

	// Links is the number of crawlable links discovered on the page.
	Links int `json:"links,omitempty"`

	// FetchedAt is when the visit completed.
	FetchedAt time.Time `json:"fetched_at"`

	// Error is the string form of the error that ended the visit.
	// Empty when the page was fetched successfully.
	Error string `json:"error,omitempty"`
}
