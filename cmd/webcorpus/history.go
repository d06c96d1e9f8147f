package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusworks/webcorpus/internal/config"
	"github.com/corpusworks/webcorpus/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [host]",
		Short: "List recorded crawl and fetch sessions",
		Long: `History lists the sessions stored in the crawl history database,
newest first. With a host argument only that host's sessions are
shown.

Two lookups dig deeper: --session prints every page record of one
stored session, and --url prints every recorded visit of one page
URL across all sessions.

Examples:
  # The last 20 sessions
  webcorpus history

  # Sessions for one host
  webcorpus history docs.example.com

  # What did session 12 fetch?
  webcorpus history --session 12

  # When was this page last fetched, and did it work?
  webcorpus history --url https://docs.example.com/guide`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of sessions to list (0 lists all)")
	cmd.Flags().Int64("session", 0,
		"Print the page records of one session ID")
	cmd.Flags().String("url", "",
		"Print every recorded visit of one page URL")
	cmd.Flags().BoolP("json", "j", false,
		"Output records as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	sessionID, err := cmd.Flags().GetInt64("session")
	if err != nil {
		return err
	}

	lookupURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	if sessionID != 0 && lookupURL != "" {
		return errors.New("--session and --url cannot be used together")
	}
	if len(args) > 0 && (sessionID != 0 || lookupURL != "") {
		return errors.New("the host argument only applies when listing sessions")
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-only close on exit

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case sessionID != 0:
		return printSessionPages(ctx, db, sessionID, out, asJSON)
	case lookupURL != "":
		return printURLVisits(ctx, db, lookupURL, out, asJSON)
	default:
		host := ""
		if len(args) > 0 {
			host = args[0]
		}
		return printSessions(ctx, db, host, limit, out, asJSON)
	}
}

// printSessions lists stored session summaries, newest first.
func printSessions(ctx context.Context, db *database.HistoryDB, host string, limit int, out io.Writer, asJSON bool) error {
	records, err := db.ListSessions(ctx, host, limit)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		if host != "" {
			fmt.Fprintf(out, "No sessions recorded for %s\n", host)
		} else {
			fmt.Fprintln(out, "No sessions recorded yet")
		}
		return nil
	}

	fmt.Fprintf(out, "%-5s %-20s %-6s %-30s %6s %8s %7s %10s\n",
		"ID", "STARTED", "MODE", "HOST", "PAGES", "FETCHED", "FAILED", "DURATION")
	for _, rec := range records {
		fmt.Fprintf(out, "%-5d %-20s %-6s %-30s %6d %8d %7d %10s\n",
			rec.ID,
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Mode,
			rec.Host,
			rec.PagesTotal,
			rec.PagesFetched,
			rec.PagesFailed,
			rec.Duration.Round(time.Millisecond),
		)
	}
	return nil
}

// printSessionPages prints one stored session's header and page
// records.
func printSessionPages(ctx context.Context, db *database.HistoryDB, sessionID int64, out io.Writer, asJSON bool) error {
	session, err := db.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no session with ID %d", sessionID)
	}

	pages, err := db.ListPages(ctx, sessionID)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, struct {
			Session *database.SessionRecord `json:"session"`
			Pages   []database.PageRecord   `json:"pages"`
		}{session, pages})
	}

	fmt.Fprintf(out, "Session %d: %s of %s (%s)\n\n",
		session.ID,
		session.Mode,
		session.BaseURL,
		session.StartedAt.Format("2006-01-02 15:04:05"),
	)

	fmt.Fprintf(out, "%-22s %6s  %s\n", "OUTCOME", "STATUS", "URL")
	for _, page := range pages {
		fmt.Fprintf(out, "%-22s %6d  %s\n", page.Outcome, page.StatusCode, page.URL)
	}
	return nil
}

// printURLVisits prints every recorded visit of one page URL.
func printURLVisits(ctx context.Context, db *database.HistoryDB, pageURL string, out io.Writer, asJSON bool) error {
	visits, err := db.LookupURL(ctx, pageURL)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, visits)
	}

	if len(visits) == 0 {
		fmt.Fprintf(out, "No recorded visits of %s\n", pageURL)
		return nil
	}

	fmt.Fprintf(out, "%-8s %-20s %-22s %6s  %s\n",
		"SESSION", "FETCHED AT", "OUTCOME", "STATUS", "TITLE")
	for _, visit := range visits {
		fmt.Fprintf(out, "%-8d %-20s %-22s %6d  %s\n",
			visit.SessionID,
			visit.FetchedAt.Format("2006-01-02 15:04:05"),
			visit.Outcome,
			visit.StatusCode,
			visit.Title,
		)
	}
	return nil
}

// writeJSON renders history records the way the report writers render
// sessions.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
