package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/corpusworks/webcorpus/internal/model"
)

// FileName is the SQLite database file created inside the database
// directory.
const FileName = "webcorpus.db"

// HistoryDB provides SQLite-based storage for crawl history.
// It manages connection pooling and provides methods for saving and
// querying sessions and their page records.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the location of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Sessions summarize one crawl or fetch run
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		host TEXT NOT NULL,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER DEFAULT 0,
		pages_total INTEGER DEFAULT 0,
		pages_fetched INTEGER DEFAULT 0,
		pages_skipped INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		sitemap_path TEXT,
		output_dir TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_host ON sessions(host);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	-- Pages store the per-URL outcomes of a session
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		outcome TEXT NOT NULL,
		status_code INTEGER DEFAULT 0,
		content_type TEXT,
		title TEXT,
		artifact TEXT,
		fetched_at DATETIME,
		error TEXT,
		UNIQUE(session_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_session ON pages(session_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionRecord is a stored session summary.
type SessionRecord struct {
	ID           int64
	BaseURL      string
	Host         string
	Mode         string
	StartedAt    time.Time
	Duration     time.Duration
	PagesTotal   int
	PagesFetched int
	PagesSkipped int
	PagesFailed  int
	SitemapPath  string
	OutputDir    string
	ErrorMessage string
}

// PageRecord is a stored per-URL outcome.
type PageRecord struct {
	ID           int64
	SessionID    int64
	URL          string
	Outcome      model.Outcome
	StatusCode   int
	ContentType  string
	Title        string
	ArtifactName string
	FetchedAt    time.Time
	ErrorMessage string
}

// SaveSession stores a finished session together with all of its page
// records in one transaction and returns the new session ID.
func (hdb *HistoryDB) SaveSession(ctx context.Context, session *model.Session) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO sessions (base_url, host, mode, started_at, duration_ms,
		pages_total, pages_fetched, pages_skipped, pages_failed,
		sitemap_path, output_dir, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.BaseURL,
		session.Host,
		session.Mode,
		session.StartedAt.UTC().Format(time.RFC3339),
		session.Duration.Milliseconds(),
		len(session.Pages),
		session.FetchedCount(),
		session.SkippedCount(),
		session.FailedCount(),
		session.SitemapPath,
		session.OutputDir,
		session.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session ID: %w", err)
	}

	for _, page := range session.Pages {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO pages (session_id, url, outcome, status_code,
			content_type, title, artifact, fetched_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, url) DO NOTHING
		`,
			sessionID,
			page.URL,
			string(page.Outcome),
			page.StatusCode,
			page.ContentType,
			page.Title,
			page.ArtifactName,
			page.FetchedAt.UTC().Format(time.RFC3339),
			page.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}

	return sessionID, nil
}

// GetSession retrieves a session summary by ID.
// Returns nil without error when the session does not exist.
func (hdb *HistoryDB) GetSession(ctx context.Context, id int64) (*SessionRecord, error) {
	row := hdb.db.QueryRowContext(ctx, `
	SELECT id, base_url, host, mode, started_at, duration_ms,
		pages_total, pages_fetched, pages_skipped, pages_failed,
		sitemap_path, output_dir, error
	FROM sessions
	WHERE id = ?
	`, id)

	record, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return record, nil
}

// ListSessions returns session summaries newest first, optionally
// filtered by host. A limit of 0 means no limit.
func (hdb *HistoryDB) ListSessions(ctx context.Context, host string, limit int) ([]SessionRecord, error) {
	query := `
	SELECT id, base_url, host, mode, started_at, duration_ms,
		pages_total, pages_fetched, pages_skipped, pages_failed,
		sitemap_path, output_dir, error
	FROM sessions
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if host != "" {
		query += " AND host = ?"
		args = append(args, host)
	}

	query += " ORDER BY started_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		results = append(results, *record)
	}

	return results, rows.Err()
}

// ListPages returns the page records of a session in URL order.
func (hdb *HistoryDB) ListPages(ctx context.Context, sessionID int64) ([]PageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, session_id, url, outcome, status_code, content_type,
		title, artifact, fetched_at, error
	FROM pages
	WHERE session_id = ?
	ORDER BY url
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	return collectPages(rows)
}

// LookupURL returns every recorded visit of a URL across all
// sessions, newest session first.
func (hdb *HistoryDB) LookupURL(ctx context.Context, pageURL string) ([]PageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT p.id, p.session_id, p.url, p.outcome, p.status_code,
		p.content_type, p.title, p.artifact, p.fetched_at, p.error
	FROM pages p
	JOIN sessions s ON s.id = p.session_id
	WHERE p.url = ?
	ORDER BY s.started_at DESC, p.session_id DESC
	`, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to look up URL: %w", err)
	}
	defer rows.Close()

	return collectPages(rows)
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

// scanSession reads one session row.
func scanSession(row scanner) (*SessionRecord, error) {
	var record SessionRecord
	var startedAt string
	var durationMS int64
	var sitemapPath, outputDir, errorMessage sql.NullString

	err := row.Scan(
		&record.ID,
		&record.BaseURL,
		&record.Host,
		&record.Mode,
		&startedAt,
		&durationMS,
		&record.PagesTotal,
		&record.PagesFetched,
		&record.PagesSkipped,
		&record.PagesFailed,
		&sitemapPath,
		&outputDir,
		&errorMessage,
	)
	if err != nil {
		return nil, err
	}

	record.StartedAt = parseTimestamp(startedAt)
	record.Duration = time.Duration(durationMS) * time.Millisecond
	record.SitemapPath = sitemapPath.String
	record.OutputDir = outputDir.String
	record.ErrorMessage = errorMessage.String

	return &record, nil
}

// collectPages reads all page rows.
func collectPages(rows *sql.Rows) ([]PageRecord, error) {
	var results []PageRecord
	for rows.Next() {
		var record PageRecord
		var outcome string
		var fetchedAt sql.NullString
		var contentType, title, artifact, errorMessage sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.SessionID,
			&record.URL,
			&outcome,
			&record.StatusCode,
			&contentType,
			&title,
			&artifact,
			&fetchedAt,
			&errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page record: %w", err)
		}

		record.Outcome = model.Outcome(outcome)
		record.ContentType = contentType.String
		record.Title = title.String
		record.ArtifactName = artifact.String
		record.ErrorMessage = errorMessage.String
		if fetchedAt.Valid {
			record.FetchedAt = parseTimestamp(fetchedAt.String)
		}

		results = append(results, record)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,              // Format used for stored sessions
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats
// depending on configuration. If parsing fails with all formats,
// returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
