package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// XLSXWriter outputs the batch summary as a workbook with one row per
// submission, mirroring the CSV layout for instructors who work in
// spreadsheets. It implements SummaryWriter only; there is no workbook
// rendition of a single report.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteSummary outputs the batch summary as an .xlsx workbook.
func (w *XLSXWriter) WriteSummary(summary *model.BatchSummary) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, err
	}

	header := make([]any, len(csvHeader))
	for i, name := range csvHeader {
		header[i] = name
	}
	if err := w.setRow(f, sheet, 1, header); err != nil {
		return 0, err
	}

	for i, row := range summary.Rows {
		values := []any{
			row.Submission,
			fmt.Sprintf("%.2f%%", row.Percentage),
			row.Matches,
			row.Total,
			row.Status,
		}
		if err := w.setRow(f, sheet, i+2, values); err != nil {
			return 0, err
		}
	}

	// Widen the file name column; the defaults truncate most names.
	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return 0, err
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// setRow writes one row of values starting at column A.
func (w *XLSXWriter) setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
