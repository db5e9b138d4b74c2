package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// verbose enables the skipped-unit and answer-detail sections.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with skipped units and per-cell
// answer details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *TextWriter) Write(report *model.GradeReport) (int, error) {
	report.Finalize()

	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeScore(&sb, report)
	w.writeRegions(&sb, report)
	w.writeFeedback(&sb, report)
	if w.verbose {
		w.writeSkipped(&sb, report)
		w.writeDetails(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with submission information.
func (w *TextWriter) writeHeader(sb *strings.Builder, report *model.GradeReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SHEETGRADE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Submission:  %s\n", filepath.Base(report.Submission)))
	sb.WriteString(fmt.Sprintf("Assignment:  %s\n", report.Assignment))
	sb.WriteString(fmt.Sprintf("Date Graded: %s\n", report.DateGraded.Format("2006-01-02 15:04:05 MST")))
	if report.Digest != "" {
		sb.WriteString(fmt.Sprintf("Digest:      %s\n", report.Digest))
	}
	sb.WriteString(fmt.Sprintf("Status:      %s\n", statusText(report)))
	sb.WriteString("\n")
}

// statusText summarizes how grading ended.
func statusText(report *model.GradeReport) string {
	switch {
	case report.TimedOut:
		return "CANCELED (partial results discarded)"
	case len(report.MissingSheets) > 0:
		return "INCOMPLETE - missing sheets: " + strings.Join(report.MissingSheets, ", ")
	case report.ErrorMessage != "":
		return "ERROR - " + report.ErrorMessage
	default:
		return "Complete"
	}
}

// writeScore writes the overall score section.
func (w *TextWriter) writeScore(sb *strings.Builder, report *model.GradeReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SCORE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Score:   %.2f (%.0f%%)\n", report.Score, report.Percentage()))
	sb.WriteString(fmt.Sprintf("  Correct: %d/%d\n", report.Matches, report.TotalCells))
	if !report.Failed() && report.TotalCells > 0 {
		sb.WriteString(fmt.Sprintf("  Band:    %s\n", report.Band()))
	}
	sb.WriteString("\n")
}

// writeRegions writes the per-region breakdown section.
func (w *TextWriter) writeRegions(sb *strings.Builder, report *model.GradeReport) {
	if len(report.Regions) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("REGIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, region := range report.Regions {
		sb.WriteString(fmt.Sprintf("  %-24s %4d/%-4d (%3.0f%%)", region.Region, region.Correct, region.Total, region.Percentage()))
		if len(region.Skipped) > 0 {
			sb.WriteString(fmt.Sprintf("  [%d unit(s) skipped]", len(region.Skipped)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeFeedback writes the student-facing feedback text.
func (w *TextWriter) writeFeedback(sb *strings.Builder, report *model.GradeReport) {
	if report.Feedback == "" {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FEEDBACK\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(report.Feedback)
	sb.WriteString("\n\n")
}

// writeSkipped lists units that could not be graded.
func (w *TextWriter) writeSkipped(sb *strings.Builder, report *model.GradeReport) {
	if report.SkippedUnits() == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SKIPPED UNITS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, region := range report.Regions {
		for _, s := range region.Skipped {
			sb.WriteString(fmt.Sprintf("  * %s: %s\n", s.Unit, s.Reason))
		}
	}
	sb.WriteString("\n")
}

// writeDetails lists wrong answers for regions graded with detail.
func (w *TextWriter) writeDetails(sb *strings.Builder, report *model.GradeReport) {
	var lines []string
	for _, region := range report.Regions {
		for _, cell := range region.Cells {
			if cell.Correct {
				continue
			}
			lines = append(lines, fmt.Sprintf("  %s!%s: Your answer was '%s', but should be '%s'",
				region.Sheet, cell.Cell, cell.Student, cell.Solution))
		}
	}
	if len(lines) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("INCORRECT CELLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sheetgrade\n")
	sb.WriteString("https://github.com/sheetgrade/sheetgrade\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// WriteSummary outputs the batch summary as a console table.
func (w *TextWriter) WriteSummary(summary *model.BatchSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        GRADING SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Assignment: %s\n", summary.Assignment))
	sb.WriteString(fmt.Sprintf("Graded:     %d\n", summary.Graded))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", summary.Failed))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  %-32s %10s %9s  %s\n", "Submission", "Percentage", "Matches", "Status"))
	sb.WriteString("  " + strings.Repeat("-", 66) + "\n")
	for _, row := range summary.Rows {
		sb.WriteString(fmt.Sprintf("  %-32s %9.2f%% %4d/%-4d  %s\n",
			row.Submission, row.Percentage, row.Matches, row.Total, row.Status))
	}
	sb.WriteString("\n")

	if summary.Graded > 0 {
		sb.WriteString(fmt.Sprintf("  Average: %.2f%%   Highest: %.2f%%   Lowest: %.2f%%\n",
			summary.Average, summary.Highest, summary.Lowest))
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}
