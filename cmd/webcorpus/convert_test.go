package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corpusworks/webcorpus/internal/storage"
)

// TestNewConvertCmd tests the convert command creation.
func TestNewConvertCmd(t *testing.T) {
	t.Parallel()

	cmd := NewConvertCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "convert" {
			t.Errorf("expected use 'convert', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != "." {
			t.Errorf("expected default '.', got %q", flag.DefValue)
		}
	})
}

// TestRunConvertCmd tests the convert command execution.
func TestRunConvertCmd(t *testing.T) {
	t.Run("converts stored articles", func(t *testing.T) {
		tmpDir := t.TempDir()

		store, err := storage.New(tmpDir)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}

		article := []byte(`<html><head><title>Guide</title></head>` +
			`<body><h1>Guide</h1><p>Hello world.</p></body></html>`)
		articlePath := filepath.Join(store.Root(), storage.ArticlesDir, "docs.example.com_guide.html")
		if err := os.WriteFile(articlePath, article, 0o600); err != nil {
			t.Fatalf("failed to seed article: %v", err)
		}

		var buf bytes.Buffer
		cmd := NewConvertCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", tmpDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Converted 1 documents") {
			t.Errorf("expected conversion count in output, got %q", buf.String())
		}

		texts, err := store.ListTexts()
		if err != nil {
			t.Fatalf("failed to list texts: %v", err)
		}
		if len(texts) != 1 {
			t.Errorf("expected 1 Markdown document, got %d", len(texts))
		}
	})

	t.Run("converts nothing in an empty corpus", func(t *testing.T) {
		tmpDir := t.TempDir()

		var buf bytes.Buffer
		cmd := NewConvertCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"-o", tmpDir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Converted 0 documents") {
			t.Errorf("expected zero conversions in output, got %q", buf.String())
		}
	})
}
