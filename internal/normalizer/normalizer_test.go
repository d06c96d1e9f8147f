package normalizer

import "testing"

// TestNormalize tests URL canonicalization.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips fragment",
			in:   "https://example.com/docs#section-2",
			want: "https://example.com/docs",
		},
		{
			name: "strips trailing slash",
			in:   "https://example.com/docs/",
			want: "https://example.com/docs",
		},
		{
			name: "root URL collapses to bare authority",
			in:   "https://example.com/",
			want: "https://example.com",
		},
		{
			name: "bare authority unchanged",
			in:   "https://example.com",
			want: "https://example.com",
		},
		{
			name: "strips fragment and trailing slash together",
			in:   "https://example.com/a/b/#top",
			want: "https://example.com/a/b",
		},
		{
			name: "preserves query string",
			in:   "https://example.com/search?q=go&page=2",
			want: "https://example.com/search?q=go&page=2",
		},
		{
			name: "preserves query while stripping fragment",
			in:   "https://example.com/search?q=go#results",
			want: "https://example.com/search?q=go",
		},
		{
			name: "deep path untouched",
			in:   "https://example.com/a/b/c/d",
			want: "https://example.com/a/b/c/d",
		},
		{
			name: "repeated trailing slashes all removed",
			in:   "https://example.com/docs///",
			want: "https://example.com/docs",
		},
		{
			name: "host and scheme preserved",
			in:   "http://sub.example.com:8080/path/",
			want: "http://sub.example.com:8080/path",
		},
		{
			name: "host lowercased",
			in:   "https://Example.COM/Docs",
			want: "https://example.com/Docs",
		},
		{
			name: "malformed URL returned unchanged",
			in:   "https://exam ple.com/%zz",
			want: "https://exam ple.com/%zz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeIdempotent verifies that normalizing twice gives the
// same result as normalizing once.
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://example.com/",
		"https://example.com/docs/",
		"https://example.com/docs#frag",
		"https://example.com/a/b/c///",
		"https://example.com/search?q=1#x",
		"https://example.com",
		"not a url at all",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

// TestPathDepth tests path segment counting.
func TestPathDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"root has depth 0", "https://example.com", 0},
		{"single segment", "https://example.com/docs", 1},
		{"two segments", "https://example.com/docs/api", 2},
		{"three segments", "https://example.com/a/b/c", 3},
		{"query does not add depth", "https://example.com/a/b?x=1", 2},
		{"deep path", "https://example.com/1/2/3/4/5/6/7/8/9/10/11/12", 12},
		{"unparseable URL has depth 0", "https://exa mple.com/%zz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PathDepth(tt.in); got != tt.want {
				t.Errorf("PathDepth(%q) = %d, expected %d", tt.in, got, tt.want)
			}
		})
	}
}

// TestSameHost tests host comparison between URLs.
func TestSameHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical hosts", "https://example.com/a", "https://example.com/b", true},
		{"case-insensitive", "https://Example.COM/a", "https://example.com/b", true},
		{"different hosts", "https://example.com", "https://other.com", false},
		{"subdomain differs", "https://www.example.com", "https://example.com", false},
		{"port differs", "https://example.com:8443/a", "https://example.com/a", false},
		{"scheme ignored", "http://example.com/a", "https://example.com/b", true},
		{"empty host never matches", "/relative/path", "/other/path", false},
		{"malformed first URL", "https://exa mple.com/%zz", "https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SameHost(tt.a, tt.b); got != tt.want {
				t.Errorf("SameHost(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
