package report

import (
	"encoding/json"
	"io"

	"github.com/corpusworks/webcorpus/internal/model"
)

// JSONWriter outputs sessions in JSON format.
// This format is designed for tool integration and programmatic
// processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full session in JSON format.
func (w *JSONWriter) Write(session *model.Session) (int, error) {
	return w.writeJSON(session)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for readable terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a session with output metadata. It is used when
// writing the session together with contextual information.
type JSONReport struct {
	// Version is the webcorpus version that produced this session.
	Version string `json:"version"`

	// Session is the full session record.
	Session *model.Session `json:"session"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(session *model.Session, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Session: session,
	}
}

// FullJSONWriter outputs complete sessions with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the webcorpus version string.
	version string
}

// NewFullJSONWriter creates a writer for complete sessions with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the session wrapped with metadata.
func (w *FullJSONWriter) Write(session *model.Session) (int, error) {
	return w.writeJSON(NewJSONReport(session, w.version))
}
