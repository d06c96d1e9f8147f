package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/corpusworks/webcorpus/internal/robots"
)

func parseDoc(t *testing.T, content string) *html.Node {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("failed to parse test document: %v", err)
	}
	return doc
}

// rulePolicy builds a Policy from raw robots.txt rules through a
// throwaway test server.
func rulePolicy(t *testing.T, rules string) *robots.Policy {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rules))
	}))
	t.Cleanup(ts.Close)

	loader := robots.NewLoader(ts.Client(), robots.WithLogger(discardLogger()))
	return loader.Load(context.Background(), ts.URL)
}

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="/about">About</a>
		<a href="https://example.com/guides/setup">Setup</a>
		<a href="https://other.example.org/">Elsewhere</a>
		<a href="http://example.com/insecure">Insecure</a>
		<div><p><a href="contact">Contact</a></p></div>
	</body></html>`)

	got := ExtractLinks(doc, "https://example.com/docs", "https://example.com", robots.AllowAll())
	want := []string{
		"https://example.com/about",
		"https://example.com/guides/setup",
		"https://example.com/contact",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks() = %v, want %v", got, want)
	}
}

func TestExtractLinksSkipsNonNavigableHrefs(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="javascript:void(0)">JS</a>
		<a href="mailto:team@example.com">Mail</a>
		<a href="tel:+1555">Call</a>
		<a href="data:text/plain,hi">Data</a>
		<a href="#">Top</a>
		<a href="">Empty</a>
		<a>No href</a>
	</body></html>`)

	got := ExtractLinks(doc, "https://example.com", "https://example.com", robots.AllowAll())
	if len(got) != 0 {
		t.Errorf("ExtractLinks() = %v, want no links", got)
	}
}

func TestExtractLinksNormalizesAndDeduplicates(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body>
		<a href="/docs">One</a>
		<a href="/docs/">Two</a>
		<a href="/docs#intro">Three</a>
		<a href="https://EXAMPLE.com/docs">Four</a>
	</body></html>`)

	got := ExtractLinks(doc, "https://example.com", "https://example.com", robots.AllowAll())
	want := []string{"https://example.com/docs"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks() = %v, want %v", got, want)
	}
}

func TestExtractLinksRespectsRobots(t *testing.T) {
	t.Parallel()

	policy := rulePolicy(t, "User-agent: *\nDisallow: /private\n")

	doc := parseDoc(t, `<html><body>
		<a href="/public">Public</a>
		<a href="/private/secret">Secret</a>
	</body></html>`)

	got := ExtractLinks(doc, "https://example.com", "https://example.com", policy)
	want := []string{"https://example.com/public"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractLinks() = %v, want %v", got, want)
	}
}

func TestExtractLinksBadPageURL(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<html><body><a href="/about">About</a></body></html>`)

	if got := ExtractLinks(doc, "https://exam ple.com/%zz", "https://example.com", robots.AllowAll()); got != nil {
		t.Errorf("ExtractLinks() = %v, want nil for bad page URL", got)
	}
}
