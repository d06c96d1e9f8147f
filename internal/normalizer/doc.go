// Package normalizer canonicalizes URLs so that equivalent forms
// compare equal. Every URL entering the frontier, the visited set,
// or the sitemap passes through Normalize first, which makes string
// equality sufficient for deduplication everywhere else.
package normalizer
