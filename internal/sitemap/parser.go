package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Parse decodes sitemap XML. For a sitemapindex it returns the nested
// sitemap locations; for a urlset it returns the page entries. Exactly
// one of the two slices is populated.
func Parse(data []byte) ([]string, []Entry, error) {
	var index Index
	if err := xml.Unmarshal(data, &index); err == nil && len(index.Sitemaps) > 0 {
		links := make([]string, 0, len(index.Sitemaps))
		for _, sm := range index.Sitemaps {
			if loc := strings.TrimSpace(sm.Loc); loc != "" {
				links = append(links, loc)
			}
		}
		return links, nil, nil
	}

	var set URLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	entries := make([]Entry, 0, len(set.URLs))
	for _, entry := range set.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			entry.Loc = loc
			entries = append(entries, entry)
		}
	}
	return nil, entries, nil
}
