package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corpusworks/webcorpus/internal/config"
	"github.com/corpusworks/webcorpus/internal/crawler"
	"github.com/corpusworks/webcorpus/internal/fetcher"
	"github.com/corpusworks/webcorpus/internal/log"
	"github.com/corpusworks/webcorpus/internal/model"
	"github.com/corpusworks/webcorpus/internal/normalizer"
	"github.com/corpusworks/webcorpus/internal/pipeline"
	"github.com/corpusworks/webcorpus/internal/report"
	"github.com/corpusworks/webcorpus/internal/robots"
	"github.com/corpusworks/webcorpus/internal/storage"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <base-url>...",
		Short: "Crawl a site and store its pages as a corpus",
		Long: `Crawl starts at the base URL, follows same-host links, and stores
every HTML page as a cleaned artifact under the output directory.
After the crawl it synthesizes a sitemap.xml of the fetched pages and
records the session in the history database.

Only https:// seeds are accepted. robots.txt disallow rules are
honored, non-HTML responses are skipped, and pages that keep failing
are recorded with their last error.

Multiple seeds run concurrently, each writing into a subdirectory of
the output directory named after its host.

Examples:
  # Crawl a documentation site into ./corpus
  webcorpus crawl -o corpus https://docs.example.com

  # Crawl two sites, one subdirectory per host
  webcorpus crawl -o corpus https://docs.example.com https://docs.example.org

  # Convert fetched pages to Markdown in the same run
  webcorpus crawl --convert https://docs.example.com

  # Write the session summary as Markdown to a file
  webcorpus crawl -m --report-file reports/session.md https://docs.example.com

Configuration file (.webcorpus) example:
  defaults:
    max_pages: 200
  hosts:
    docs.example.com:
      workers: 2
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	addRunFlags(cmd)

	return cmd
}

// addRunFlags registers the flags shared by the crawl and fetch
// commands.
func addRunFlags(cmd *cobra.Command) {
	// Fetch behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent page fetchers")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per site")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Fetch attempts per URL, the first try included")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Corpus location flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory the corpus is written under")
	cmd.Flags().Bool("convert", false,
		"Convert fetched pages to Markdown after the run")

	// History database flags
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().Bool("no-db", false,
		"Disable history persistence")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webcorpus in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON session summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown session summary (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the session summary to a file instead of stdout (creates directories if needed)")
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	return runCorpusCmd(cmd, args, model.ModeCrawl)
}

// runCorpusCmd executes a crawl or fetch run over the seed arguments.
func runCorpusCmd(cmd *cobra.Command, args []string, mode string) error {
	// Build config from flags
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCorpus(ctx, cfg, args, mode, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the credential-redacting structured logger used
// by every command. Warnings and errors only by default; verbose
// lowers the level to debug.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// buildRunConfig creates a Config from the crawl/fetch command flags.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Convert, err = cmd.Flags().GetBool("convert")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.NoDB, err = cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-host configuration from the config file. An explicitly
	// specified path must exist; the default locations are optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Hosts, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report-file")
	if err != nil {
		return nil, err
	}

	// The first seed stands in for validation; the full list is passed
	// to the batch run.
	if len(args) > 0 {
		cfg.BaseURL = normalizer.Normalize(args[0])
	}

	return cfg, nil
}

// runCorpus runs one pipeline per seed and renders the finished
// sessions.
func runCorpus(ctx context.Context, cfg *config.Config, seeds []string, mode string, logger *slog.Logger) error {
	logger.Info("starting run",
		"mode", mode,
		"seeds", len(seeds),
		"workers", cfg.Workers,
		"maxPages", cfg.MaxPages,
	)

	multiSeed := len(seeds) > 1

	bp := pipeline.NewBatchProcessor(mode,
		func(baseURL string) (*pipeline.Pipeline, error) {
			return newSeedPipeline(cfg, baseURL, mode, multiSeed, logger)
		},
		pipeline.WithBatchLogger(logger),
	)

	sessions, runErr := bp.ProcessBatch(ctx, seeds)

	// Render whatever finished, a cancelled run included.
	if err := writeReports(cfg, sessions); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}

	return checkRunFailures(sessions)
}

// checkRunFailures turns an all-seeds-failed batch into a command
// error so the exit code reflects it. Partial failures are visible in
// the session summaries and exit zero.
func checkRunFailures(sessions []*model.Session) error {
	completed, failed := 0, 0
	var firstErr error
	for _, session := range sessions {
		if session == nil {
			continue
		}
		completed++
		if session.Error != nil {
			failed++
			if firstErr == nil {
				firstErr = session.Error
			}
		}
	}

	if completed == 0 || failed < completed {
		return nil
	}
	if completed == 1 {
		return firstErr
	}
	return fmt.Errorf("all %d runs failed", failed)
}

// newSeedPipeline assembles the run pipeline for one seed URL. Every
// seed gets its own store, HTTP client, and engine so per-host
// settings never leak between concurrent runs.
func newSeedPipeline(cfg *config.Config, baseURL, mode string, multiSeed bool, logger *slog.Logger) (*pipeline.Pipeline, error) {
	seed := normalizer.Normalize(baseURL)
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", baseURL, err)
	}

	// Per-host overrides apply to a copy of the config.
	seedCfg := *cfg
	seedCfg.Headers = cloneHeaders(cfg.Headers)
	seedCfg.ApplyHostOverrides(u.Host)

	outputDir := seedCfg.OutputDir
	if multiSeed {
		outputDir = filepath.Join(outputDir, u.Host)
	}

	store, err := storage.New(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	client := &http.Client{Timeout: seedCfg.Timeout}

	f := fetcher.New(client,
		fetcher.WithUserAgent(seedCfg.UserAgent),
		fetcher.WithHeaders(seedCfg.Headers),
		fetcher.WithMaxRetries(seedCfg.MaxRetries),
		fetcher.WithMaxBodySize(seedCfg.MaxBodySize),
		fetcher.WithSink(store),
		fetcher.WithLogger(logger),
	)

	loader := robots.NewLoader(client,
		robots.WithUserAgent(seedCfg.UserAgent),
		robots.WithLogger(logger),
	)

	engine := crawler.New(f, loader,
		crawler.WithWorkers(seedCfg.Workers),
		crawler.WithMaxPages(seedCfg.MaxPages),
		crawler.WithLogger(logger),
	)

	runOpts := []pipeline.RunOption{
		pipeline.WithRunConvert(seedCfg.Convert),
		pipeline.WithRunDBDir(seedCfg.DBDir),
		pipeline.WithRunNoDB(seedCfg.NoDB),
		pipeline.WithRunLogger(logger),
	}

	if mode == model.ModeFetch {
		runOpts = append(runOpts,
			pipeline.WithRunClient(client),
			pipeline.WithRunUserAgent(seedCfg.UserAgent),
		)
		return pipeline.FetchPipeline(engine, store, runOpts...), nil
	}

	return pipeline.CrawlPipeline(engine, store, runOpts...), nil
}

// cloneHeaders copies a header map so later per-host merges cannot
// mutate the shared original.
func cloneHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	clone := make(map[string]string, len(headers))
	for k, v := range headers {
		clone[k] = v
	}
	return clone
}

// writeReports renders every finished session in the requested format.
// All sessions of one batch go to the same destination.
func writeReports(cfg *config.Config, sessions []*model.Session) error {
	var output io.Writer = os.Stdout
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // Read-only close after flush
		output = f
	}

	writer := newReportWriter(cfg, output)
	for _, session := range sessions {
		// A cancelled batch leaves never-started seeds without a session.
		if session == nil {
			continue
		}
		if _, err := writer.Write(session); err != nil {
			return fmt.Errorf("failed to write session summary: %w", err)
		}
	}

	return nil
}

// newReportWriter picks the session summary writer for the requested
// format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// createReportFile opens the report destination for writing, creating
// parent directories as needed.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, nil
}
