// Package storage lays out the on-disk corpus produced by a crawl.
//
// A corpus root contains three fixed locations: articles/ holds one
// pretty-printed HTML file per fetched page, texts/ holds the
// Markdown renditions produced by conversion, and sitemap.xml holds
// the synthesized sitemap. Artifact names are derived from URL paths
// ("/guides/setup" becomes "guides_setup.html", the root page becomes
// "index.html"), and the Markdown for an article always shares its
// base name, which is the contract the convert and rank stages rely
// on to correlate files.
package storage
