package report

import (
	"io"

	"github.com/corpusworks/webcorpus/internal/model"
)

// Writer renders a finished session to a configured destination.
// Implementations write sessions in various formats.
type Writer interface {
	// Write outputs the session to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(session *model.Session) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the session to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(session *model.Session) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(session)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for session writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// outcomeOrder fixes the rendering order of outcome groups.
var outcomeOrder = []model.Outcome{
	model.OutcomeFetched,
	model.OutcomeSkippedDisallowed,
	model.OutcomeSkippedNotHTML,
	model.OutcomeFailedRetries,
	model.OutcomeFailedUnexpected,
}

// outcomeLabel returns the human-readable name of an outcome.
func outcomeLabel(o model.Outcome) string {
	switch o {
	case model.OutcomeFetched:
		return "Fetched"
	case model.OutcomeSkippedDisallowed:
		return "Skipped (robots)"
	case model.OutcomeSkippedNotHTML:
		return "Skipped (not HTML)"
	case model.OutcomeFailedRetries:
		return "Failed (retries exhausted)"
	case model.OutcomeFailedUnexpected:
		return "Failed (unexpected)"
	default:
		return string(o)
	}
}

// pagesByOutcome groups the session's pages by outcome, keeping the
// session's page order inside each group.
func pagesByOutcome(session *model.Session) map[model.Outcome][]*model.PageResult {
	groups := make(map[model.Outcome][]*model.PageResult, len(outcomeOrder))
	for _, page := range session.Pages {
		groups[page.Outcome] = append(groups[page.Outcome], page)
	}
	return groups
}
