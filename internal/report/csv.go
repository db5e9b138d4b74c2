package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// csvHeader is the column layout of the summary CSV.
var csvHeader = []string{"filename", "percentage", "matches", "total", "status"}

// CSVWriter outputs grading results as CSV rows for spreadsheet
// import. The percentage column carries a percent sign ("85.00%") so
// the file reads naturally when opened directly.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the header and a single row for one report.
func (w *CSVWriter) Write(report *model.GradeReport) (int, error) {
	report.Finalize()

	status := model.StatusSuccess
	if report.Failed() {
		status = model.StatusError
	}

	return w.writeRows([][]string{{
		filepath.Base(report.Submission),
		fmt.Sprintf("%.2f%%", report.Percentage()),
		strconv.Itoa(report.Matches),
		strconv.Itoa(report.TotalCells),
		status,
	}})
}

// WriteSummary outputs the header and one row per submission.
func (w *CSVWriter) WriteSummary(summary *model.BatchSummary) (int, error) {
	rows := make([][]string, len(summary.Rows))
	for i, row := range summary.Rows {
		rows[i] = []string{
			row.Submission,
			fmt.Sprintf("%.2f%%", row.Percentage),
			strconv.Itoa(row.Matches),
			strconv.Itoa(row.Total),
			row.Status,
		}
	}
	return w.writeRows(rows)
}

// writeRows writes the header and the given rows, returning the number
// of bytes written.
func (w *CSVWriter) writeRows(rows [][]string) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// countingWriter counts bytes passed through to the underlying writer.
// encoding/csv reports errors but not byte counts, and the Writer
// interface promises counts.
type countingWriter struct {
	w io.Writer
	n int
}

// Write implements io.Writer.
func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
