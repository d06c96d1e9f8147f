// Package main provides the entry point for the webcorpus CLI.
//
// webcorpus builds text corpora from documentation sites. It crawls a
// site over HTTPS (or fetches exactly the pages the site's published
// sitemap lists), stores each page as a cleaned HTML artifact, and can
// convert the artifacts to Markdown and rank them against keywords.
//
// Usage:
//
//	webcorpus crawl <base-url>
//	webcorpus fetch <base-url>
//
// See --help for all available options.
package main

// main is the entry point for webcorpus.
func main() {
	Execute()
}
