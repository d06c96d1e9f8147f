package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/corpusworks/webcorpus/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting that pipes cleanly to files and other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the session in human-readable format.
func (w *SimpleWriter) Write(session *model.Session) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, session)
	w.writeSummary(&sb, session)
	w.writeArtifacts(&sb, session)
	w.writePages(&sb, session)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with session information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, session *model.Session) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      WEBCORPUS SESSION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Base URL:  %s\n", session.BaseURL))
	sb.WriteString(fmt.Sprintf("Host:      %s\n", session.Host))
	sb.WriteString(fmt.Sprintf("Mode:      %s\n", session.Mode))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", session.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", session.Duration.Round(time.Millisecond)))

	switch {
	case session.TimedOut:
		sb.WriteString("Status:    CANCELLED (partial results)\n")
	case session.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:    ERROR - %s\n", session.ErrorMessage))
	default:
		sb.WriteString("Status:    Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the outcome summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, session *model.Session) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("OUTCOME SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  FETCHED:  %d\n", session.FetchedCount()))
	sb.WriteString(fmt.Sprintf("  SKIPPED:  %d\n", session.SkippedCount()))
	sb.WriteString(fmt.Sprintf("  FAILED:   %d\n", session.FailedCount()))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:    %d pages\n", len(session.Pages)))
	sb.WriteString("\n")
}

// writeArtifacts writes the artifacts section.
func (w *SimpleWriter) writeArtifacts(sb *strings.Builder, session *model.Session) {
	hasArtifacts := session.OutputDir != "" || session.SitemapPath != "" || session.ConvertedCount > 0
	if !hasArtifacts && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ARTIFACTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if !hasArtifacts {
		sb.WriteString("  No artifacts written\n")
	} else {
		if session.OutputDir != "" {
			sb.WriteString(fmt.Sprintf("  Output dir: %s\n", session.OutputDir))
		}
		if session.SitemapPath != "" {
			sb.WriteString(fmt.Sprintf("  Sitemap:    %s\n", session.SitemapPath))
		}
		if session.ConvertedCount > 0 {
			sb.WriteString(fmt.Sprintf("  Converted:  %d Markdown documents\n", session.ConvertedCount))
		}
	}
	sb.WriteString("\n")
}

// writePages writes all pages grouped by outcome.
func (w *SimpleWriter) writePages(sb *strings.Builder, session *model.Session) {
	if len(session.Pages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	groups := pagesByOutcome(session)
	for _, outcome := range outcomeOrder {
		pages := groups[outcome]
		if len(pages) == 0 && !w.showEmpty {
			continue
		}

		w.writePagesForOutcome(sb, outcome, pages)
	}
}

// writePagesForOutcome writes the pages of one outcome group.
func (w *SimpleWriter) writePagesForOutcome(sb *strings.Builder, outcome model.Outcome, pages []*model.PageResult) {
	indicator := w.getOutcomeIndicator(outcome)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, outcomeLabel(outcome)))

	if len(pages) == 0 {
		sb.WriteString("  No pages\n\n")
		return
	}

	for _, page := range pages {
		sb.WriteString(fmt.Sprintf("  * %s\n", page.URL))
		if page.Title != "" {
			sb.WriteString(fmt.Sprintf("    Title: %s\n", page.Title))
		}
		if page.Error != "" {
			sb.WriteString(fmt.Sprintf("    Error: %s\n", page.Error))
		}
		if w.verbose {
			if page.StatusCode != 0 {
				sb.WriteString(fmt.Sprintf("    Status: %d %s\n", page.StatusCode, page.ContentType))
			}
			if page.ArtifactName != "" {
				sb.WriteString(fmt.Sprintf("    Artifact: %s\n", page.ArtifactName))
			}
		}
	}
	sb.WriteString("\n")
}

// getOutcomeIndicator returns a visual indicator for the outcome group.
func (w *SimpleWriter) getOutcomeIndicator(outcome model.Outcome) string {
	switch {
	case outcome.Fetched():
		return "+"
	case outcome.Skipped():
		return "-"
	case outcome.Failed():
		return "x"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by webcorpus\n")
	sb.WriteString("https://github.com/corpusworks/webcorpus\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
