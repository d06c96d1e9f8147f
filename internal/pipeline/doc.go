// Package pipeline sequences the stages of a corpus-building run.
//
// A run is expressed as ordered steps over a shared *model.Session:
// page collection (link-discovery crawl or sitemap-driven fetch),
// sitemap synthesis, optional Markdown conversion, and history
// persistence. Each stage implements Step, receives the session
// accumulated by the stages before it, and records its outcome on it.
//
// CrawlPipeline and FetchPipeline assemble the standard step order
// for the two run modes. BatchProcessor runs several seeds through
// their own pipelines with a bounded number of concurrent runs.
package pipeline
