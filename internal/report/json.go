package report

import (
	"encoding/json"
	"io"

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
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

// Write outputs the full report in JSON format.
func (w *JSONWriter) Write(report *model.GradeReport) (int, error) {
	report.Finalize()
	return w.writeJSON(report)
}

// WriteSummary outputs the batch summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *model.BatchSummary) (int, error) {
	return w.writeJSON(summary)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
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

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps the full report with output metadata.
//
// Design decision: We wrap the report rather than modifying GradeReport
// because this allows us to add output-specific fields without polluting
// the core data structure.
type JSONReport struct {
	// Version is the sheetgrade version that generated this report.
	Version string `json:"version"`

	// Report is the full grade report.
	Report *model.GradeReport `json:"report"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.GradeReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
	}
}

// FullJSONWriter outputs complete reports with the metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the sheetgrade version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the full report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.GradeReport) (int, error) {
	report.Finalize()
	return w.writeJSON(NewJSONReport(report, w.version))
}

// feedbackPayload is the wire shape grading platforms consume. The key
// names are part of the contract and must not change.
type feedbackPayload struct {
	FractionalScore float64 `json:"fractionalScore"` //nolint:tagliatelle // platform contract
	Feedback        string  `json:"feedback"`
}

// FeedbackWriter outputs the minimal feedback document: a JSON object
// holding only the fractional score and the student-facing feedback
// text. This is the document an external grading platform ingests.
//
// FeedbackWriter deliberately does not implement SummaryWriter. The
// feedback document is defined for exactly one submission, so the
// JSONWriter is held as a field rather than embedded to keep its
// WriteSummary from being promoted.
type FeedbackWriter struct {
	json *JSONWriter
}

// NewFeedbackWriter creates a FeedbackWriter that outputs to the given
// writer.
func NewFeedbackWriter(output io.Writer, opts ...JSONWriterOption) *FeedbackWriter {
	return &FeedbackWriter{
		json: NewJSONWriter(output, opts...),
	}
}

// Write outputs the feedback document for the report.
func (w *FeedbackWriter) Write(report *model.GradeReport) (int, error) {
	report.Finalize()
	return w.json.writeJSON(feedbackPayload{
		FractionalScore: report.Score,
		Feedback:        report.Feedback,
	})
}
