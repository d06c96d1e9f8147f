package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/corpusworks/webcorpus/internal/fetcher"
	"github.com/corpusworks/webcorpus/internal/rank"
)

// Default configuration values. They match the component defaults so a
// flagless run and a programmatic run behave the same.
const (
	// DefaultTimeout bounds each individual HTTP request, not the
	// whole run. Ordinary web servers answer well within this; slow
	// pages are retried rather than waited on.
	DefaultTimeout = 10 * time.Second

	// DefaultWorkers is the number of concurrent page fetchers.
	// Ten keeps a crawl quick without hammering a single host.
	DefaultWorkers = 10

	// DefaultMaxRetries is the total number of fetch attempts per URL,
	// the first try included.
	DefaultMaxRetries = 3

	// DefaultMaxPages caps how many pages one run may visit. This
	// prevents runaway crawling on large or infinitely-generating
	// sites. Users can override it via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultOutputDir is where the articles and texts directories
	// and sitemap.xml are written.
	DefaultOutputDir = "."

	// DefaultUserAgent mirrors the fetcher's browser identity.
	DefaultUserAgent = fetcher.DefaultUserAgent

	// DefaultOllamaURL mirrors the embedding client's endpoint root.
	DefaultOllamaURL = rank.DefaultBaseURL

	// DefaultEmbedModel mirrors the embedding client's model name.
	DefaultEmbedModel = rank.DefaultModel

	// AppName is the application name used for XDG directory paths.
	AppName = "webcorpus"
)

// Config holds all configuration options for webcorpus. It is
// populated from CLI flags and the optional configuration file, then
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// BaseURL is the seed URL for crawl and fetch runs.
	BaseURL string

	// Keywords are the terms the match command ranks the corpus
	// against.
	Keywords []string

	// Workers is the number of concurrent page fetchers.
	Workers int

	// MaxPages caps how many pages one run may visit.
	MaxPages int

	// Timeout is the HTTP timeout applied to each request.
	Timeout time.Duration

	// MaxRetries is the total number of fetch attempts per URL.
	MaxRetries int

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Headers are extra request headers applied to every request,
	// typically merged in from per-host file configuration.
	Headers map[string]string

	// OutputDir is the directory the corpus is written under.
	OutputDir string

	// Convert chains Markdown conversion after a successful crawl.
	Convert bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// DBDir is the directory holding the crawl history database.
	// Defaults to the XDG data directory.
	DBDir string

	// NoDB disables history persistence entirely.
	NoDB bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .webcorpus in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// Hosts holds per-host configuration loaded from the config file.
	Hosts *File

	// OllamaURL is the embeddings endpoint root for the match command.
	OllamaURL string

	// EmbedModel is the embedding model for the match command.
	EmbedModel string

	// TopN limits how many ranked documents the match command prints.
	// Zero prints all of them.
	TopN int

	// JSONReport switches the session summary (and match output) to
	// JSON. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport switches the session summary to GitHub Flavored
	// Markdown with tables and charts. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the session summary.
	// When set, the summary is written there instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string
}

// NewConfig creates a Config with default values. All fields are set
// to safe, sensible defaults that work for most use cases; callers
// override specific values after creation.
func NewConfig() *Config {
	return &Config{
		Workers:     DefaultWorkers,
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		MaxBodySize: DefaultMaxBodySize,
		UserAgent:   DefaultUserAgent,
		OutputDir:   DefaultOutputDir,
		DBDir:       XDGDataDir(),
		OllamaURL:   DefaultOllamaURL,
		EmbedModel:  DefaultEmbedModel,
	}
}

// XDGDataDir returns the XDG data directory for webcorpus.
// On Linux: ~/.local/share/webcorpus
// On macOS: ~/Library/Application Support/webcorpus
// On Windows: %LOCALAPPDATA%\webcorpus
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid and returns a
// specific error describing the first problem found. It is called
// once after CLI parsing, before a crawl or fetch run begins.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxRetries <= 0 {
		return ErrInvalidRetries
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.TopN < 0 {
		return ErrInvalidTopN
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// ApplyHostOverrides merges the per-host file configuration for host
// into the effective settings. Explicit per-host values win over the
// global ones; absent values leave the globals untouched.
func (c *Config) ApplyHostOverrides(host string) {
	if c.Hosts == nil {
		return
	}

	hc := c.Hosts.ForHost(host)
	if hc.MaxPages > 0 {
		c.MaxPages = hc.MaxPages
	}
	if hc.Workers > 0 {
		c.Workers = hc.Workers
	}
	if len(hc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(hc.Headers))
		}
		for k, v := range hc.Headers {
			c.Headers[k] = v
		}
	}
}
