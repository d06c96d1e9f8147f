package sitemap

import (
	"strings"
	"testing"
)

func TestPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pageURL string
		want    float64
	}{
		{
			name:    "root scores full priority",
			pageURL: "https://example.com",
			want:    1.0,
		},
		{
			name:    "single segment",
			pageURL: "https://example.com/about",
			want:    0.9,
		},
		{
			name:    "two segments",
			pageURL: "https://example.com/guides/setup",
			want:    0.8,
		},
		{
			name:    "three segments round cleanly",
			pageURL: "https://example.com/a/b/c",
			want:    0.7,
		},
		{
			name:    "deep path floors at minimum",
			pageURL: "https://example.com/a/b/c/d/e/f/g/h/i/j/k/l",
			want:    0.1,
		},
		{
			name:    "nine segments reach the floor exactly",
			pageURL: "https://example.com/a/b/c/d/e/f/g/h/i",
			want:    0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Priority(tt.pageURL); got != tt.want {
				t.Errorf("Priority(%q) = %v, want %v", tt.pageURL, got, tt.want)
			}
		})
	}
}

func TestBuildOrdersByPriority(t *testing.T) {
	t.Parallel()

	set := Build([]string{
		"https://example.com/guides/setup",
		"https://example.com",
		"https://example.com/zebra",
		"https://example.com/alpha",
	})

	if set.Xmlns != Namespace {
		t.Errorf("Xmlns = %q, want %q", set.Xmlns, Namespace)
	}

	wantLocs := []string{
		"https://example.com",
		"https://example.com/alpha",
		"https://example.com/zebra",
		"https://example.com/guides/setup",
	}
	if len(set.URLs) != len(wantLocs) {
		t.Fatalf("len(URLs) = %d, want %d", len(set.URLs), len(wantLocs))
	}
	for i, want := range wantLocs {
		if set.URLs[i].Loc != want {
			t.Errorf("URLs[%d].Loc = %q, want %q", i, set.URLs[i].Loc, want)
		}
	}

	wantPriorities := []string{"1.0", "0.9", "0.9", "0.8"}
	for i, want := range wantPriorities {
		if set.URLs[i].Priority != want {
			t.Errorf("URLs[%d].Priority = %q, want %q", i, set.URLs[i].Priority, want)
		}
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://example.com/b",
		"https://example.com/a",
	}
	Build(urls)

	if urls[0] != "https://example.com/b" {
		t.Errorf("input slice reordered: %v", urls)
	}
}

func TestURLSetMarshal(t *testing.T) {
	t.Parallel()

	set := Build([]string{
		"https://example.com",
		"https://example.com/about",
	})

	data, err := set.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got := string(data)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://example.com</loc>",
		"<priority>1.0</priority>",
		"<loc>https://example.com/about</loc>",
		"<priority>0.9</priority>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("Marshal() output missing trailing newline")
	}
}

func TestBuildMarshalParseRoundTrip(t *testing.T) {
	t.Parallel()

	set := Build([]string{
		"https://example.com/guides/setup",
		"https://example.com",
	})
	data, err := set.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	links, entries, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if links != nil {
		t.Errorf("Parse() links = %v, want nil", links)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Loc != "https://example.com" {
		t.Errorf("entries[0].Loc = %q", entries[0].Loc)
	}
	if entries[0].Priority != "1.0" {
		t.Errorf("entries[0].Priority = %q, want %q", entries[0].Priority, "1.0")
	}
}
