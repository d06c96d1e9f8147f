// Package crawler discovers and collects the pages of a website
// cluster by following same-host links from a seed URL.
//
// # Architecture
//
// The package is designed around the Engine type, which coordinates a
// pool of workers over a shared Frontier. The Frontier is the single
// synchronization point: it tracks which URLs are pending, in flight,
// and visited, so each URL is claimed at most once no matter how the
// workers interleave.
//
// # Components
//
//   - Engine: runs the crawl from a seed URL to a finished result
//   - Frontier: the URL queue with deduplication and completion detection
//   - ExtractLinks: pulls crawl candidates out of a parsed page
//
// # Politeness
//
// The crawl stays on the seed's host, skips URLs the site's robots
// rules disallow, and stops at a configurable page ceiling. Fetch
// behavior itself (timeouts, retries, body limits) belongs to the
// fetcher package.
//
// # Usage
//
//	engine := crawler.New(f, loader, crawler.WithWorkers(10))
//	result, err := engine.Crawl(ctx, "https://example.com")
package crawler
