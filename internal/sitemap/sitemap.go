package sitemap

import (
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/corpusworks/webcorpus/internal/normalizer"
)

// Namespace is the sitemap protocol namespace declared on urlset
// documents.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet is a sitemap urlset document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	URLs    []Entry  `xml:"url"`
}

// Entry is a single url element inside a urlset.
type Entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Index is a sitemapindex document pointing at nested sitemaps.
type Index struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []IndexEntry `xml:"sitemap"`
}

// IndexEntry is a single sitemap reference inside a sitemapindex.
type IndexEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Priority derives the crawl priority of a URL from its path depth.
// The site root scores 1.0 and each path segment subtracts 0.1, with
// a floor of 0.1.
func Priority(pageURL string) float64 {
	depth := normalizer.PathDepth(pageURL)
	p := math.Round((1.0-0.1*float64(depth))*10) / 10
	return math.Max(0.1, p)
}

// Build assembles a urlset from page URLs, ordered by descending
// priority with ties broken by URL.
func Build(urls []string) *URLSet {
	sorted := make([]string, len(urls))
	copy(sorted, urls)
	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := Priority(sorted[i]), Priority(sorted[j])
		if pi != pj {
			return pi > pj
		}
		return sorted[i] < sorted[j]
	})

	set := &URLSet{Xmlns: Namespace, URLs: make([]Entry, 0, len(sorted))}
	for _, u := range sorted {
		set.URLs = append(set.URLs, Entry{
			Loc:      u,
			Priority: strconv.FormatFloat(Priority(u), 'f', 1, 64),
		})
	}
	return set
}

// Marshal serializes the urlset as indented XML with a declaration.
func (s *URLSet) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sitemap: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
