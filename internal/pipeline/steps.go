package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/corpusworks/webcorpus/internal/config"
	"github.com/corpusworks/webcorpus/internal/convert"
	"github.com/corpusworks/webcorpus/internal/crawler"
	"github.com/corpusworks/webcorpus/internal/database"
	"github.com/corpusworks/webcorpus/internal/fetcher"
	"github.com/corpusworks/webcorpus/internal/model"
	"github.com/corpusworks/webcorpus/internal/sitemap"
	"github.com/corpusworks/webcorpus/internal/storage"
)

// maxSitemapBytes caps how much of one sitemap document is read.
const maxSitemapBytes = 10 * 1024 * 1024

// maxSitemapDepth bounds how deep nested sitemap indexes are followed.
const maxSitemapDepth = 3

// CrawlStep collects pages by following links from the session's
// base URL.
type CrawlStep struct {
	// engine runs the link-discovery crawl.
	engine *crawler.Engine

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCrawlStep creates a crawl step backed by the given engine.
// A nil engine falls back to one with default settings.
func NewCrawlStep(engine *crawler.Engine, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		engine: engine,
		logger: slog.Default(),
	}
	if s.engine == nil {
		s.engine = crawler.New(nil, nil)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the crawl and merges its pages into the session. A
// cancelled crawl keeps the pages collected so far and marks the
// session as timed out.
func (s *CrawlStep) Do(ctx context.Context, session *model.Session) error {
	result, err := s.engine.Crawl(ctx, session.BaseURL)
	if result != nil {
		mergeResult(session, result)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			session.TimedOut = true
		}
		return fmt.Errorf("crawl of %s failed: %w", session.BaseURL, err)
	}

	s.logger.Info("crawl step collected pages",
		"host", session.Host,
		"pages", len(result.Pages),
	)
	return nil
}

// SitemapFetchStep collects pages by fetching the URLs listed in the
// host's published sitemap instead of following links.
type SitemapFetchStep struct {
	// engine fetches the listed pages.
	engine *crawler.Engine

	// client downloads the sitemap documents themselves.
	client *http.Client

	// userAgent is sent when requesting sitemap documents.
	userAgent string

	// logger for structured logging.
	logger *slog.Logger
}

// SitemapFetchStepOption configures a SitemapFetchStep.
type SitemapFetchStepOption func(*SitemapFetchStep)

// WithSitemapFetchClient sets the HTTP client used to download
// sitemap documents.
func WithSitemapFetchClient(client *http.Client) SitemapFetchStepOption {
	return func(s *SitemapFetchStep) {
		if client != nil {
			s.client = client
		}
	}
}

// WithSitemapFetchUserAgent sets the User-Agent header sent when
// requesting sitemap documents.
func WithSitemapFetchUserAgent(ua string) SitemapFetchStepOption {
	return func(s *SitemapFetchStep) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithSitemapFetchLogger sets a custom logger for the fetch step.
func WithSitemapFetchLogger(logger *slog.Logger) SitemapFetchStepOption {
	return func(s *SitemapFetchStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSitemapFetchStep creates a sitemap-driven fetch step backed by
// the given engine. A nil engine falls back to one with default
// settings.
func NewSitemapFetchStep(engine *crawler.Engine, opts ...SitemapFetchStepOption) *SitemapFetchStep {
	s := &SitemapFetchStep{
		engine:    engine,
		client:    &http.Client{Timeout: config.DefaultTimeout},
		userAgent: fetcher.DefaultUserAgent,
		logger:    slog.Default(),
	}
	if s.engine == nil {
		s.engine = crawler.New(nil, nil)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SitemapFetchStep) Name() string {
	return "sitemap_fetch"
}

// Do loads the sitemap published under the session's base URL and
// fetches every page it lists. An unreadable or empty seed sitemap
// is fatal for the run; unreadable nested sitemaps are skipped.
func (s *SitemapFetchStep) Do(ctx context.Context, session *model.Session) error {
	sitemapURL := strings.TrimRight(session.BaseURL, "/") + "/sitemap.xml"

	urls, err := s.collect(ctx, sitemapURL, 0, make(map[string]struct{}))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSitemapUnavailable, err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySitemap, sitemapURL)
	}

	s.logger.Info("sitemap loaded",
		"sitemap", sitemapURL,
		"urls", len(urls),
	)

	result, err := s.engine.Fetch(ctx, session.BaseURL, urls)
	if result != nil {
		mergeResult(session, result)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			session.TimedOut = true
		}
		return fmt.Errorf("fetch of %s failed: %w", session.BaseURL, err)
	}

	return nil
}

// collect gathers page URLs from the sitemap at sitemapURL, following
// nested sitemap indexes up to maxSitemapDepth levels. Only the root
// document is required; nested sitemaps that fail to load are logged
// and skipped.
func (s *SitemapFetchStep) collect(ctx context.Context, sitemapURL string, depth int, seen map[string]struct{}) ([]string, error) {
	if depth > maxSitemapDepth {
		s.logger.Warn("sitemap index nested too deep", "sitemap", sitemapURL, "depth", depth)
		return nil, nil
	}
	if _, dup := seen[sitemapURL]; dup {
		return nil, nil
	}
	seen[sitemapURL] = struct{}{}

	data, err := s.download(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	nested, entries, err := sitemap.Parse(data)
	if err != nil {
		return nil, err
	}

	if len(nested) > 0 {
		var urls []string
		for _, loc := range nested {
			sub, err := s.collect(ctx, loc, depth+1, seen)
			if err != nil {
				s.logger.Warn("skipping unreadable nested sitemap",
					"sitemap", loc,
					"error", err,
				)
				continue
			}
			urls = append(urls, sub...)
		}
		return urls, nil
	}

	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		urls = append(urls, entry.Loc)
	}
	return urls, nil
}

// download retrieves one sitemap document.
func (s *SitemapFetchStep) download(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", sitemapURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", sitemapURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, sitemapURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sitemapURL, err)
	}
	return data, nil
}

// SitemapWriteStep synthesizes a sitemap of the pages the run
// actually fetched and writes it to the artifact store.
type SitemapWriteStep struct {
	// store is the artifact store the sitemap is written into.
	store *storage.Store

	// logger for structured logging.
	logger *slog.Logger
}

// SitemapWriteStepOption configures a SitemapWriteStep.
type SitemapWriteStepOption func(*SitemapWriteStep)

// WithSitemapWriteLogger sets a custom logger for the sitemap step.
func WithSitemapWriteLogger(logger *slog.Logger) SitemapWriteStepOption {
	return func(s *SitemapWriteStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSitemapWriteStep creates a step that writes the synthesized
// sitemap into store.
func NewSitemapWriteStep(store *storage.Store, opts ...SitemapWriteStepOption) *SitemapWriteStep {
	s := &SitemapWriteStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SitemapWriteStep) Name() string {
	return "sitemap_write"
}

// Do records the corpus location on the session, then builds the
// sitemap from the fetched URLs and persists it. A run that fetched
// nothing writes no sitemap.
func (s *SitemapWriteStep) Do(_ context.Context, session *model.Session) error {
	session.OutputDir = s.store.Root()

	urls := session.FetchedURLs()
	if len(urls) == 0 {
		s.logger.Debug("skipping sitemap, no pages fetched")
		return nil
	}

	data, err := sitemap.Build(urls).Marshal()
	if err != nil {
		return fmt.Errorf("failed to build sitemap: %w", err)
	}

	path, err := s.store.SaveSitemap(data)
	if err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	session.SitemapPath = path
	s.logger.Info("sitemap written", "path", path, "urls", len(urls))
	return nil
}

// ConvertStep renders every stored HTML article into Markdown.
type ConvertStep struct {
	// store holds the articles to convert and receives the Markdown.
	store *storage.Store

	// logger for structured logging.
	logger *slog.Logger
}

// ConvertStepOption configures a ConvertStep.
type ConvertStepOption func(*ConvertStep)

// WithConvertLogger sets a custom logger for the convert step.
func WithConvertLogger(logger *slog.Logger) ConvertStepOption {
	return func(s *ConvertStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewConvertStep creates a step that converts the stored articles
// into Markdown documents.
func NewConvertStep(store *storage.Store, opts ...ConvertStepOption) *ConvertStep {
	s := &ConvertStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ConvertStep) Name() string {
	return "convert"
}

// Do converts the stored articles and records how many Markdown
// documents were produced.
func (s *ConvertStep) Do(ctx context.Context, session *model.Session) error {
	converter := convert.New(s.store, convert.WithLogger(s.logger))

	converted, err := converter.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to convert articles: %w", err)
	}

	session.ConvertedCount = converted
	s.logger.Info("articles converted", "count", converted)
	return nil
}

// PersistStep records the finished session in the history database.
// Persistence is best effort: database errors are logged, never
// returned.
type PersistStep struct {
	// dbDir is the directory holding the history database file.
	dbDir string

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPersistStep creates a step that saves sessions under dbDir.
// An empty dbDir falls back to the XDG data directory.
func NewPersistStep(dbDir string, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		dbDir:  dbDir,
		logger: slog.Default(),
	}
	if s.dbDir == "" {
		s.dbDir = config.XDGDataDir()
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the session to the history database.
func (s *PersistStep) Do(ctx context.Context, session *model.Session) error {
	db, err := database.Open(s.dbDir, database.DefaultOptions())
	if err != nil {
		s.logger.Warn("failed to open history database",
			"dir", s.dbDir,
			"error", err,
		)
		return nil
	}
	defer func() {
		if err := db.Close(); err != nil {
			s.logger.Warn("failed to close history database", "error", err)
		}
	}()

	id, err := db.SaveSession(ctx, session)
	if err != nil {
		s.logger.Warn("failed to record session history",
			"host", session.Host,
			"error", err,
		)
		return nil
	}

	s.logger.Info("session recorded",
		"session_id", id,
		"host", session.Host,
	)
	return nil
}

// mergeResult copies a collection result into the session. The base
// URL and host are refreshed from the normalized seed.
func mergeResult(session *model.Session, result *crawler.Result) {
	session.BaseURL = result.Seed
	if u, err := url.Parse(result.Seed); err == nil {
		session.Host = u.Host
	}
	for _, page := range result.Pages {
		session.AddPage(page)
	}
}

// RunConfig holds the settings shared by the CrawlPipeline and
// FetchPipeline assemblies.
type RunConfig struct {
	// Convert chains Markdown conversion onto the run.
	Convert bool

	// DBDir is the history database directory. Empty means the XDG
	// data directory.
	DBDir string

	// NoDB disables history persistence entirely.
	NoDB bool

	// Client downloads sitemap documents in fetch mode.
	Client *http.Client

	// UserAgent is sent when requesting sitemap documents in fetch
	// mode.
	UserAgent string

	// Logger is handed to the pipeline and every step.
	Logger *slog.Logger
}

// RunOption configures a RunConfig.
type RunOption func(*RunConfig)

// WithRunConvert chains Markdown conversion onto the run.
func WithRunConvert(convert bool) RunOption {
	return func(c *RunConfig) {
		c.Convert = convert
	}
}

// WithRunDBDir sets the history database directory.
func WithRunDBDir(dir string) RunOption {
	return func(c *RunConfig) {
		c.DBDir = dir
	}
}

// WithRunNoDB disables history persistence.
func WithRunNoDB(noDB bool) RunOption {
	return func(c *RunConfig) {
		c.NoDB = noDB
	}
}

// WithRunClient sets the HTTP client used for sitemap downloads in
// fetch mode.
func WithRunClient(client *http.Client) RunOption {
	return func(c *RunConfig) {
		c.Client = client
	}
}

// WithRunUserAgent sets the User-Agent for sitemap downloads in
// fetch mode.
func WithRunUserAgent(ua string) RunOption {
	return func(c *RunConfig) {
		c.UserAgent = ua
	}
}

// WithRunLogger sets the logger used by the pipeline and its steps.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *RunConfig) {
		c.Logger = logger
	}
}

// CrawlPipeline assembles the standard link-discovery run: crawl,
// sitemap synthesis, optional Markdown conversion, and history
// persistence.
func CrawlPipeline(engine *crawler.Engine, store *storage.Store, opts ...RunOption) *Pipeline {
	cfg := newRunConfig(opts...)

	p := New(WithLogger(cfg.Logger))
	p.AddStep(NewCrawlStep(engine, WithCrawlLogger(cfg.Logger)))
	addSharedSteps(p, store, cfg)

	return p
}

// FetchPipeline assembles the sitemap-driven run: fetch the published
// sitemap's URLs, then the same tail of stages as CrawlPipeline.
func FetchPipeline(engine *crawler.Engine, store *storage.Store, opts ...RunOption) *Pipeline {
	cfg := newRunConfig(opts...)

	p := New(WithLogger(cfg.Logger))
	p.AddStep(NewSitemapFetchStep(engine,
		WithSitemapFetchClient(cfg.Client),
		WithSitemapFetchUserAgent(cfg.UserAgent),
		WithSitemapFetchLogger(cfg.Logger),
	))
	addSharedSteps(p, store, cfg)

	return p
}

// newRunConfig applies run options over the defaults.
func newRunConfig(opts ...RunOption) *RunConfig {
	cfg := &RunConfig{
		UserAgent: fetcher.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return cfg
}

// addSharedSteps appends the stages common to both run modes.
func addSharedSteps(p *Pipeline, store *storage.Store, cfg *RunConfig) {
	p.AddStep(NewSitemapWriteStep(store, WithSitemapWriteLogger(cfg.Logger)))
	if cfg.Convert {
		p.AddStep(NewConvertStep(store, WithConvertLogger(cfg.Logger)))
	}
	if !cfg.NoDB {
		p.AddStep(NewPersistStep(cfg.DBDir, WithPersistLogger(cfg.Logger)))
	}
}
