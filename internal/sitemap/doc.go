// Package sitemap builds and parses sitemap XML documents.
//
// The builder synthesizes a urlset from crawled page URLs, assigning
// each URL a priority derived from its path depth and ordering
// entries by descending priority. The parser reads both urlset and
// sitemapindex documents so stored sitemaps and remote ones published
// by other sites can seed a fetch run.
package sitemap
