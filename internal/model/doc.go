// Package model defines the core data structures used throughout webcorpus.
//
// This package contains the following main types:
//   - Session: The result of a crawl or fetch run against one host
//   - PageResult: The terminal state of a single visited URL
//   - Outcome: The classification taxonomy for page visits
//
// Multiple packages (crawler, pipeline, database, report) need these
// types, so centralizing them prevents import cycles. The models are
// designed to be serializable to JSON for report output and database
// storage.
package model
