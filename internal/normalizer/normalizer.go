package normalizer

import (
	"net/url"
	"strings"
)

// Normalize returns the canonical form of a URL: the fragment is
// dropped, trailing slashes are removed from the path, and the host
// is lowercased, so "https://example.com/docs/" and
// "https://Example.com/docs#top" both normalize to
// "https://example.com/docs". The root URL normalizes to a bare
// authority ("https://example.com/" becomes "https://example.com").
// Scheme, path case, and query are preserved.
//
// Normalize is idempotent and never fails; input that does not parse
// as a URL is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String()
}

// PathDepth returns the number of path segments in a normalized URL.
// The root URL has depth 0, "/docs" has depth 1, "/docs/api" has
// depth 2. Because Normalize strips trailing slashes, the segment
// count equals the number of "/" separators in the path. URLs that
// do not parse have depth 0.
func PathDepth(normalized string) int {
	u, err := url.Parse(normalized)
	if err != nil {
		return 0
	}
	return strings.Count(u.Path, "/")
}

// SameHost reports whether two URLs share a host. Host comparison is
// case-insensitive and includes the port. URLs that do not parse
// never match.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Host != "" && strings.EqualFold(ua.Host, ub.Host)
}
