package config

import "errors"

// Configuration validation errors. They are returned by
// Config.Validate() and name the specific setting that is wrong, so
// callers can match them with errors.Is while users get a readable
// message.
var (
	// ErrNoBaseURL is returned when no seed URL is configured for a
	// crawl or fetch run.
	ErrNoBaseURL = errors.New("no base URL specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request
	// failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not
	// positive. Zero workers would mean no crawling at all.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxPages is returned when the page ceiling is not
	// positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidRetries is returned when the retry budget is not
	// positive. The budget counts the first attempt, so it must be at
	// least 1.
	ErrInvalidRetries = errors.New("invalid retries: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 to keep the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidTopN is returned when the match result limit is
	// negative. Use 0 to print every ranked document.
	ErrInvalidTopN = errors.New("invalid top: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at
	// a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
