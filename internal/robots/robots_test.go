package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// discardLogger returns a logger that swallows all output so test
// logs stay clean.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestLoaderLoad tests robots.txt loading against a live test server.
func TestLoaderLoad(t *testing.T) {
	t.Parallel()

	t.Run("parses rules and blocks disallowed paths", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "User-agent: *\nDisallow: /private/\nDisallow: /tmp\n")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		loader := NewLoader(srv.Client(), WithLogger(discardLogger()))
		policy := loader.Load(context.Background(), srv.URL)

		if !policy.CanFetch(srv.URL + "/docs") {
			t.Error("expected /docs to be allowed")
		}
		if policy.CanFetch(srv.URL + "/private/data") {
			t.Error("expected /private/data to be disallowed")
		}
		if policy.CanFetch(srv.URL + "/tmp") {
			t.Error("expected /tmp to be disallowed")
		}
	})

	t.Run("matches specific user agent group", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "User-agent: badbot\nDisallow: /\n\nUser-agent: *\nDisallow: /secret/\n")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		loader := NewLoader(srv.Client(),
			WithUserAgent("badbot/1.0"),
			WithLogger(discardLogger()),
		)
		policy := loader.Load(context.Background(), srv.URL)

		if policy.CanFetch(srv.URL + "/anything") {
			t.Error("expected badbot to be blocked everywhere")
		}
	})

	t.Run("falls back to wildcard group for unknown agent", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "User-agent: badbot\nDisallow: /\n\nUser-agent: *\nDisallow: /secret/\n")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		loader := NewLoader(srv.Client(),
			WithUserAgent("Mozilla/5.0 (compatible; corpusbot)"),
			WithLogger(discardLogger()),
		)
		policy := loader.Load(context.Background(), srv.URL)

		if !policy.CanFetch(srv.URL + "/public") {
			t.Error("expected /public to be allowed for unknown agent")
		}
		if policy.CanFetch(srv.URL + "/secret/page") {
			t.Error("expected /secret/page to be disallowed by wildcard group")
		}
	})

	t.Run("missing robots.txt allows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		loader := NewLoader(srv.Client(), WithLogger(discardLogger()))
		policy := loader.Load(context.Background(), srv.URL)

		if !policy.CanFetch(srv.URL + "/anywhere") {
			t.Error("expected missing robots.txt to allow all")
		}
	})

	t.Run("server error allows everything", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		loader := NewLoader(srv.Client(), WithLogger(discardLogger()))
		policy := loader.Load(context.Background(), srv.URL)

		if !policy.CanFetch(srv.URL + "/anywhere") {
			t.Error("expected robots.txt server error to allow all")
		}
	})

	t.Run("unreachable host allows everything", func(t *testing.T) {
		t.Parallel()

		// Closed server guarantees a connection error.
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		loader := NewLoader(&http.Client{}, WithLogger(discardLogger()))
		policy := loader.Load(context.Background(), srv.URL)

		if !policy.CanFetch(srv.URL + "/anywhere") {
			t.Error("expected transport error to allow all")
		}
	})

	t.Run("unparseable base URL allows everything", func(t *testing.T) {
		t.Parallel()

		loader := NewLoader(&http.Client{}, WithLogger(discardLogger()))
		policy := loader.Load(context.Background(), "https://exa mple.com/%zz")

		if !policy.CanFetch("https://example.com/page") {
			t.Error("expected bad base URL to allow all")
		}
	})
}

// TestPolicyCanFetch tests rule evaluation edge cases.
func TestPolicyCanFetch(t *testing.T) {
	t.Parallel()

	t.Run("nil policy allows everything", func(t *testing.T) {
		t.Parallel()

		var policy *Policy
		if !policy.CanFetch("https://example.com/page") {
			t.Error("expected nil policy to allow all")
		}
	})

	t.Run("AllowAll permits every URL", func(t *testing.T) {
		t.Parallel()

		policy := AllowAll()
		if !policy.CanFetch("https://example.com/private/secret") {
			t.Error("expected AllowAll to permit everything")
		}
	})

	t.Run("empty path treated as root", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "User-agent: *\nDisallow: /\n")
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		loader := NewLoader(srv.Client(), WithLogger(discardLogger()))
		policy := loader.Load(context.Background(), srv.URL)

		if policy.CanFetch(srv.URL) {
			t.Error("expected bare authority to be matched as root path")
		}
	})
}
