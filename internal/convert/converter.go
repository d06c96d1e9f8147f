package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/markdown"

	"github.com/corpusworks/webcorpus/internal/storage"
)

// contentSelector matches the elements carried over into Markdown, in
// document order.
const contentSelector = "h1, h2, h3, h4, h5, h6, p, ul, ol, a, strong, em, blockquote"

// Converter reads HTML artifacts from a store and writes their
// Markdown renditions next to them.
type Converter struct {
	store  *storage.Store
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for per-file progress and skip warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Converter over the given store.
func New(store *storage.Store, opts ...Option) *Converter {
	c := &Converter{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// All converts every HTML artifact in the store and returns the
// number of documents written. Files that fail to convert are logged
// and skipped.
func (c *Converter) All(ctx context.Context) (int, error) {
	names, err := c.store.ListArticles()
	if err != nil {
		return 0, fmt.Errorf("failed to list articles: %w", err)
	}

	converted := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return converted, err
		}

		data, err := c.store.ReadArticle(name)
		if err != nil {
			c.logger.Warn("skipping unreadable article", "name", name, "error", err)
			continue
		}

		doc, err := Document(data)
		if err != nil {
			c.logger.Warn("skipping article that failed to convert", "name", name, "error", err)
			continue
		}

		mdName := storage.MarkdownName(name)
		if _, err := c.store.SaveMarkdown(mdName, doc); err != nil {
			c.logger.Warn("skipping article that failed to save", "name", name, "error", err)
			continue
		}

		c.logger.Info("converted article", "name", name, "markdown", mdName)
		converted++
	}

	return converted, nil
}

// Document converts one HTML page into Markdown.
func Document(data []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	if title := cleanText(doc.Find("title").First().Text()); title != "" {
		md.H1(title)
	}

	doc.Find(contentSelector).Each(func(_ int, s *goquery.Selection) {
		writeElement(md, s)
	})

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("failed to build markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// writeElement appends one content element to the Markdown document.
func writeElement(md *markdown.Markdown, s *goquery.Selection) {
	switch goquery.NodeName(s) {
	case "h1":
		writeNonEmpty(s, md.H1)
	case "h2":
		writeNonEmpty(s, md.H2)
	case "h3":
		writeNonEmpty(s, md.H3)
	case "h4":
		writeNonEmpty(s, md.H4)
	case "h5":
		writeNonEmpty(s, md.H5)
	case "h6":
		writeNonEmpty(s, md.H6)
	case "p":
		writeNonEmpty(s, md.PlainText)
	case "ul", "ol":
		items := make([]string, 0)
		s.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := cleanText(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			md.BulletList(items...)
		}
	case "a":
		href := s.AttrOr("href", "")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		if text := cleanText(s.Text()); text != "" {
			md.PlainText(markdown.Link(text, href))
		}
	case "strong":
		if text := cleanText(s.Text()); text != "" {
			md.PlainText(markdown.Bold(text))
		}
	case "em":
		if text := cleanText(s.Text()); text != "" {
			md.PlainText(markdown.Italic(text))
		}
	case "blockquote":
		writeNonEmpty(s, md.Blockquote)
	}
}

// writeNonEmpty calls write with the element's cleaned text, skipping
// empty elements.
func writeNonEmpty(s *goquery.Selection, write func(string) *markdown.Markdown) {
	if text := cleanText(s.Text()); text != "" {
		write(text)
	}
}

// cleanText collapses all runs of whitespace to single spaces and
// trims the ends.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
