package report

import (
	"io"

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// Writer defines the interface for grade report output.
// Implementations write one submission's report in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.GradeReport) (int, error)
}

// SummaryWriter is implemented by writers that can also render the
// summary of a whole batch run.
//
// Design decision: The summary lives on a separate, optional interface
// because not every format has a sensible batch rendition. The
// feedback document, for instance, is defined for exactly one
// submission.
type SummaryWriter interface {
	// WriteSummary outputs the batch summary to the configured
	// destination.
	WriteSummary(summary *model.BatchSummary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.GradeReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the batch summary to every configured writer
// that supports summaries. Writers without summary support are
// skipped.
func (m *MultiWriter) WriteSummary(summary *model.BatchSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		sw, ok := w.(SummaryWriter)
		if !ok {
			continue
		}
		n, err := sw.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
