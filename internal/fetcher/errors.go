package fetcher

import "errors"

// Fetch error taxonomy. The crawl engine matches these with
// errors.Is to classify each visited URL's outcome, so wrap them
// with fmt.Errorf("%w") when adding context.
var (
	// ErrDisallowed means robots.txt rules forbid fetching the URL.
	// The crawl engine reports this before any request is sent.
	ErrDisallowed = errors.New("fetch disallowed by robots rules")

	// ErrNotHTML means the server responded but the Content-Type is
	// not text/html. The URL still counts as visited; the response
	// is discarded and the fetch is not retried.
	ErrNotHTML = errors.New("response is not text/html")

	// ErrExhaustedRetries means every attempt failed with a transport
	// error or non-2xx status and the retry budget ran out.
	ErrExhaustedRetries = errors.New("all fetch attempts failed")

	// ErrUnexpected means decoding, parsing, or persisting the page
	// failed after a successful HTTP exchange. Not retried.
	ErrUnexpected = errors.New("unexpected fetch failure")
)
