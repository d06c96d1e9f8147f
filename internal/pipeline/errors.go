package pipeline

import "errors"

var (
	// ErrSitemapUnavailable is returned when the seed's published
	// sitemap cannot be retrieved or parsed. The fetch mode has no
	// URL list to work from without it.
	ErrSitemapUnavailable = errors.New("failed to load the published sitemap")

	// ErrEmptySitemap is returned when the published sitemap parses
	// but lists no page URLs.
	ErrEmptySitemap = errors.New("the published sitemap lists no URLs")
)
