// Package fetcher retrieves single pages over HTTP with retry,
// content-type validation, and charset-aware decoding.
//
// A fetch attempt fails in one of two ways. Transport errors and
// non-2xx statuses are transient: the fetcher retries with
// exponential backoff until the attempt budget runs out, then
// reports ErrExhaustedRetries. Content problems (wrong Content-Type,
// undecodable or unparsable bodies) are permanent: they are reported
// immediately as ErrNotHTML or ErrUnexpected and never retried.
//
// Response bodies are decoded to UTF-8 using statistical charset
// detection before parsing, because real-world pages frequently
// declare no charset or lie about it.
package fetcher
