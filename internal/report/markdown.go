package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/corpusworks/webcorpus/internal/model"
)

// MarkdownWriter outputs sessions in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full session in Markdown format.
func (w *MarkdownWriter) Write(session *model.Session) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, session)
	w.writeSummary(md, session)
	w.writeArtifacts(md, session)
	w.writePages(md, session)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with session information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, session *model.Session) {
	md.H1("Corpus Session Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + session.BaseURL + "`"},
			{"Host", session.Host},
			{"Mode", session.Mode},
			{"Started", session.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", session.Duration.Round(time.Millisecond).String()},
			{"Status", w.getStatusText(session)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on session state.
func (w *MarkdownWriter) getStatusText(session *model.Session) string {
	if session.TimedOut {
		return "⚠️ Cancelled (partial results)"
	}
	if session.ErrorMessage != "" {
		return "❌ Error - " + session.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the outcome summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, session *model.Session) {
	md.H2("Outcome Summary")
	md.PlainText("")

	groups := pagesByOutcome(session)
	rows := make([][]string, 0, len(outcomeOrder)+1)
	for _, outcome := range outcomeOrder {
		rows = append(rows, []string{outcomeLabel(outcome), strconv.Itoa(len(groups[outcome]))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(session.Pages)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(session.Pages) > 0 {
		w.writePieChart(md, session)
	}

	w.writeAlert(md, session)
}

// writePieChart writes a mermaid pie chart of the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, session *model.Session) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Outcome Distribution"),
		piechart.WithShowData(true),
	)

	groups := pagesByOutcome(session)
	for _, outcome := range outcomeOrder {
		if count := len(groups[outcome]); count > 0 {
			chart.LabelAndIntValue(outcomeLabel(outcome), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert reflecting how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, session *model.Session) {
	switch {
	case session.TimedOut:
		md.Warningf(
			"The run was cancelled after %d page(s); results are partial.",
			len(session.Pages),
		)
	case session.ErrorMessage != "":
		md.Cautionf("The run stopped early: %s", session.ErrorMessage)
	case session.FailedCount() > 0:
		md.Importantf(
			"%d page(s) failed to fetch and are missing from the corpus.",
			session.FailedCount(),
		)
	case len(session.Pages) == 0:
		md.Note("No pages were visited.")
	default:
		md.Tip("All fetch attempts succeeded.")
	}
	md.PlainText("")
}

// writeArtifacts writes the artifacts section.
func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, session *model.Session) {
	md.H2("Artifacts")
	md.PlainText("")

	var items []string
	if session.OutputDir != "" {
		items = append(items, "Output directory: `"+session.OutputDir+"`")
	}
	if session.SitemapPath != "" {
		items = append(items, "Sitemap: `"+session.SitemapPath+"`")
	}
	if session.ConvertedCount > 0 {
		items = append(items, "Converted Markdown documents: "+strconv.Itoa(session.ConvertedCount))
	}

	if len(items) == 0 {
		md.PlainText("No artifacts were written.")
		md.PlainText("")
		return
	}

	md.BulletList(items...)
	md.PlainText("")
}

// writePages writes the page table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, session *model.Session) {
	md.H2("Pages")
	md.PlainText("")

	if len(session.Pages) == 0 {
		md.PlainText("No pages were visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(session.Pages))
	for i, page := range session.Pages {
		status := "-"
		if page.StatusCode != 0 {
			status = strconv.Itoa(page.StatusCode)
		}
		title := page.Title
		if title == "" {
			title = "-"
		}

		rows[i] = []string{
			truncateString(page.URL, 60),
			outcomeLabel(page.Outcome),
			status,
			truncateString(title, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Outcome", "Status", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	// Failure details for pages that did not make it into the corpus
	for _, page := range session.Pages {
		if page.Error != "" {
			md.Details(page.URL, page.Error)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webcorpus](https://github.com/corpusworks/webcorpus)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
