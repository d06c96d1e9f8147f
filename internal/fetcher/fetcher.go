package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultUserAgent is the browser identity sent with every request.
// Some hosts refuse or degrade responses for obvious bot agents, so
// a mainstream browser string keeps the fetched corpus representative
// of what readers actually see.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// Sink persists successfully fetched documents. The fetcher calls it
// exactly once per successful fetch and never for skipped or failed
// URLs.
type Sink interface {
	// SavePage persists the parsed document for pageURL and returns
	// the artifact name it was stored under.
	SavePage(pageURL string, doc *html.Node) (string, error)
}

// Result holds everything extracted from one successfully fetched page.
type Result struct {
	// URL is the URL that was fetched.
	URL string

	// StatusCode is the final HTTP status after redirects.
	StatusCode int

	// ContentType is the response Content-Type header.
	ContentType string

	// Charset is the detected character encoding of the body.
	Charset string

	// Title is the text of the <title> element, if any.
	Title string

	// Document is the parsed HTML tree, decoded to UTF-8.
	Document *html.Node

	// ArtifactName is the name the page was persisted under.
	// Empty when the fetcher has no sink.
	ArtifactName string
}

// Fetcher retrieves pages with retry and charset-aware decoding.
type Fetcher struct {
	// client performs the HTTP requests. Its timeout bounds each
	// individual attempt.
	client *http.Client

	// userAgent is sent as the User-Agent header.
	userAgent string

	// headers are extra request headers, applied after the defaults
	// so per-host configuration can override them.
	headers map[string]string

	// maxRetries is the total number of attempts per URL.
	maxRetries int

	// backoffBase is the wait after the first failed attempt; each
	// further failure doubles it. Tests shrink this to keep the
	// 1x/2x/4x shape without real seconds.
	backoffBase time.Duration

	// maxBodySize caps how many response bytes are read.
	maxBodySize int64

	// sink receives each successfully parsed document.
	// Nil disables persistence.
	sink Sink

	// logger records retries and failures.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets extra request headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxRetries sets the total number of attempts per URL.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRetries = n
		}
	}
}

// WithBackoffBase sets the wait after the first failed attempt.
// Subsequent waits double: base, 2*base, 4*base, and so on.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoffBase = d
		}
	}
}

// WithMaxBodySize caps the number of response bytes read per page.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithSink sets the destination for fetched documents.
func WithSink(sink Sink) Option {
	return func(f *Fetcher) {
		f.sink = sink
	}
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher using the given HTTP client.
// A nil client falls back to one with a 10 second timeout.
func New(client *http.Client, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	f := &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxRetries:  3,
		backoffBase: 1 * time.Second,
		maxBodySize: 5 * 1024 * 1024, // 5MB
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f
}

// Fetch retrieves a single page. Transport errors and non-2xx
// statuses are retried with exponential backoff (base, 2x, 4x, ...)
// until maxRetries attempts are spent, then ErrExhaustedRetries is
// returned. A wrong Content-Type returns ErrNotHTML immediately;
// decode, parse, and persist failures return ErrUnexpected
// immediately. Neither is retried.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	var lastErr error

	for attempt := 0; attempt < f.maxRetries; attempt++ {
		result, retryable, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}

		lastErr = err
		f.logger.Warn("fetch attempt failed",
			"url", pageURL,
			"attempt", attempt+1,
			"of", f.maxRetries,
			"error", err,
		)

		// Back off after every failed attempt, the last one included.
		wait := f.backoffBase << attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("%w: %d attempts on %s, last error: %v",
		ErrExhaustedRetries, f.maxRetries, pageURL, lastErr)
}

// fetchOnce performs a single fetch attempt. The retryable flag is
// true only for transport errors and non-2xx statuses; content
// problems are permanent.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: building request: %v", ErrUnexpected, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, true, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return nil, false, fmt.Errorf("%w: got %q for %s", ErrNotHTML, contentType, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, true, fmt.Errorf("reading body: %w", err)
	}

	detected, decoded := decodeBody(body)

	doc, err := html.Parse(strings.NewReader(decoded))
	if err != nil {
		return nil, false, fmt.Errorf("%w: parsing %s: %v", ErrUnexpected, pageURL, err)
	}

	result := &Result{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Charset:     detected,
		Title:       documentTitle(doc),
		Document:    doc,
	}

	if f.sink != nil {
		name, err := f.sink.SavePage(pageURL, doc)
		if err != nil {
			return nil, false, fmt.Errorf("%w: persisting %s: %v", ErrUnexpected, pageURL, err)
		}
		result.ArtifactName = name
	}

	return result, false, nil
}

// decodeBody converts a response body to UTF-8. The charset comes
// from statistical detection rather than the Content-Type header,
// which is frequently missing or wrong in the wild. Returns the
// detected charset name and the decoded text; on any detection or
// decode problem the raw bytes are passed through unchanged.
func decodeBody(body []byte) (string, string) {
	detector := chardet.NewTextDetector()
	detected, err := detector.DetectBest(body)
	if err != nil || detected == nil {
		return "UTF-8", string(body)
	}

	if strings.EqualFold(detected.Charset, "UTF-8") {
		return detected.Charset, string(body)
	}

	enc, err := ianaindex.IANA.Encoding(detected.Charset)
	if err != nil || enc == nil {
		// The IANA index does not carry every name chardet can emit;
		// WHATWG sniffing fills the gap and always yields an encoding.
		enc, _, _ = charset.DetermineEncoding(body, "text/html; charset="+detected.Charset)
	}
	if enc == nil {
		return detected.Charset, string(body)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return detected.Charset, string(body)
	}
	return detected.Charset, string(decoded)
}

// documentTitle returns the text of the first <title> element.
func documentTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}
