package storage

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yosssi/gohtml"
	"golang.org/x/net/html"
)

// Corpus layout under the root directory.
const (
	// ArticlesDir holds the fetched HTML artifacts.
	ArticlesDir = "articles"

	// TextsDir holds the converted Markdown documents.
	TextsDir = "texts"

	// SitemapFile is the synthesized sitemap at the corpus root.
	SitemapFile = "sitemap.xml"
)

// Store persists crawl artifacts under a corpus root directory.
// It satisfies the fetcher's Sink interface.
type Store struct {
	// root is the corpus root directory.
	root string
}

// New creates a Store rooted at dir, creating the articles and texts
// subdirectories if they do not exist.
func New(dir string) (*Store, error) {
	for _, sub := range []string{ArticlesDir, TextsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}
	return &Store{root: dir}, nil
}

// Root returns the corpus root directory.
func (s *Store) Root() string {
	return s.root
}

// ArtifactName derives the artifact file name for a page URL from its
// path: leading and trailing slashes are trimmed, interior slashes
// become underscores, and the empty path (the site root) becomes
// "index". The ".html" extension is always appended.
func ArtifactName(pageURL string) string {
	path := ""
	if u, err := url.Parse(pageURL); err == nil {
		path = u.Path
	}

	name := strings.Trim(path, "/")
	if name == "" {
		return "index.html"
	}
	return strings.ReplaceAll(name, "/", "_") + ".html"
}

// MarkdownName returns the texts/ file name paired with an HTML
// artifact name: the same base with a ".md" extension.
func MarkdownName(artifactName string) string {
	return strings.TrimSuffix(artifactName, ".html") + ".md"
}

// SavePage renders the parsed document, pretty-prints it, and writes
// it under articles/. Returns the artifact name the page was stored
// under.
func (s *Store) SavePage(pageURL string, doc *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}

	name := ArtifactName(pageURL)
	path := filepath.Join(s.root, ArticlesDir, name)
	if err := os.WriteFile(path, gohtml.FormatBytes(buf.Bytes()), 0600); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return name, nil
}

// SaveSitemap writes the serialized sitemap at the corpus root and
// returns its full path.
func (s *Store) SaveSitemap(data []byte) (string, error) {
	path := filepath.Join(s.root, SitemapFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write sitemap: %w", err)
	}
	return path, nil
}

// SaveMarkdown writes a converted document under texts/ and returns
// its full path. The name should come from MarkdownName.
func (s *Store) SaveMarkdown(name string, data []byte) (string, error) {
	path := filepath.Join(s.root, TextsDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write markdown: %w", err)
	}
	return path, nil
}

// ListArticles returns the names of all HTML artifacts in sorted
// order.
func (s *Store) ListArticles() ([]string, error) {
	return s.list(ArticlesDir, ".html")
}

// ListTexts returns the names of all Markdown documents in sorted
// order.
func (s *Store) ListTexts() ([]string, error) {
	return s.list(TextsDir, ".md")
}

// ReadArticle returns the contents of an HTML artifact by name.
func (s *Store) ReadArticle(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, ArticlesDir, name)) //nolint:gosec // Names come from ListArticles
}

// ReadText returns the contents of a Markdown document by name.
func (s *Store) ReadText(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, TextsDir, name)) //nolint:gosec // Names come from ListTexts
}

// list returns file names with the given extension in dir, sorted.
func (s *Store) list(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s directory: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
