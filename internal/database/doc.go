// Package database provides SQLite-based storage for crawl history.
//
// This package implements the HistoryDB, which stores:
//   - Session records summarizing each crawl or fetch run
//   - Per-URL page records with outcome and artifact metadata
//
// The database lives in a single file (via modernc.org/sqlite, a
// CGO-free driver) with WAL mode enabled for concurrent reads.
// History is best effort: callers treat save failures as warnings,
// never as run failures.
package database
