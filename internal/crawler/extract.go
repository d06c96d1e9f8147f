package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/corpusworks/webcorpus/internal/normalizer"
	"github.com/corpusworks/webcorpus/internal/robots"
)

// ExtractLinks walks a parsed page and returns the normalized crawl
// candidates found in its anchor elements. A link survives only if it
// resolves against the page URL, stays on the seed's host, uses the
// https scheme, and is allowed by the robots policy. Everything else
// is dropped silently. The result is deduplicated in document order.
func ExtractLinks(doc *html.Node, pageURL, seedURL string, policy *robots.Policy) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if link, ok := resolveLink(base, href, seedURL, policy); ok {
					if _, dup := seen[link]; !dup {
						seen[link] = struct{}{}
						links = append(links, link)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// resolveLink resolves an href against the page URL and applies the
// crawl filters. The second return is false when the link must not be
// followed.
func resolveLink(base *url.URL, href, seedURL string, policy *robots.Policy) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "https" {
		return "", false
	}

	link := normalizer.Normalize(resolved.String())
	if !normalizer.SameHost(link, seedURL) {
		return "", false
	}
	if !policy.CanFetch(link) {
		return "", false
	}
	return link, true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
