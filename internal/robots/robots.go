package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Loader fetches robots.txt files and turns them into Policies.
type Loader struct {
	// client performs the robots.txt request. It should carry the
	// same timeout as the page fetcher.
	client *http.Client

	// userAgent is sent with the robots.txt request and matched
	// against User-agent groups when evaluating rules.
	userAgent string

	// logger records load failures. Failures are warnings, never
	// errors, because a missing robots.txt means permission.
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithUserAgent sets the User-Agent used for the robots.txt request
// and for rule group matching.
func WithUserAgent(ua string) LoaderOption {
	return func(l *Loader) {
		l.userAgent = ua
	}
}

// WithLogger sets the logger for load warnings.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader using the given HTTP client.
// A nil client falls back to one with a 10 second timeout.
func NewLoader(client *http.Client, opts ...LoaderOption) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	l := &Loader{client: client}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	return l
}

// Load fetches and parses robots.txt for the host of baseURL.
// It never returns an error: any failure along the way (bad base URL,
// transport error, non-200 status, parse failure) is logged as a
// warning and produces an allow-everything policy, matching the
// common fail-open treatment of robots errors.
func (l *Loader) Load(ctx context.Context, baseURL string) *Policy {
	policy := &Policy{userAgent: l.userAgent}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		l.logger.Warn("cannot derive robots.txt location, allowing all", "baseURL", baseURL)
		return policy
	}

	robotsURL := base.Scheme + "://" + base.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		l.logger.Warn("building robots.txt request failed, allowing all", "url", robotsURL, "error", err)
		return policy
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("fetching robots.txt failed, allowing all", "url", robotsURL, "error", err)
		return policy
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.logger.Warn("robots.txt not available, allowing all", "url", robotsURL, "status", resp.StatusCode)
		return policy
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		l.logger.Warn("reading robots.txt failed, allowing all", "url", robotsURL, "error", err)
		return policy
	}

	rules, err := robotstxt.FromBytes(body)
	if err != nil {
		l.logger.Warn("parsing robots.txt failed, allowing all", "url", robotsURL, "error", err)
		return policy
	}

	policy.rules = rules
	return policy
}

// Policy holds the parsed robots.txt rules for one host.
// The zero value and a nil Policy both allow every URL.
type Policy struct {
	// userAgent is matched against User-agent groups.
	userAgent string

	// rules is nil when robots.txt could not be loaded, in which
	// case everything is allowed.
	rules *robotstxt.RobotsData
}

// AllowAll returns a Policy that permits every URL.
func AllowAll() *Policy {
	return &Policy{}
}

// CanFetch reports whether the policy permits fetching rawURL.
// Group selection follows the robots.txt convention: the group for
// the configured user agent if one matches, otherwise the wildcard
// group, otherwise everything is allowed. CanFetch is pure and never
// fails; URLs that do not parse are allowed because the caller's
// normalizer rejects them before any request is made.
func (p *Policy) CanFetch(rawURL string) bool {
	if p == nil || p.rules == nil {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	group := p.rules.FindGroup(p.userAgent)
	if group == nil {
		group = p.rules.FindGroup("*")
		if group == nil {
			return true
		}
	}
	return group.Test(path)
}
