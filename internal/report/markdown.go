package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.GradeReport) (int, error) {
	report.Finalize()

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScore(md, report)
	w.writeRegions(md, report)
	w.writeSkipped(md, report)
	w.writeDetails(md, report)
	w.writeFeedback(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with submission information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.GradeReport) {
	md.H1("Grade Report")
	md.PlainText("")

	rows := [][]string{
		{"Submission", "`" + filepath.Base(report.Submission) + "`"},
		{"Assignment", report.Assignment},
		{"Date Graded", report.DateGraded.Format("2006-01-02 15:04:05 MST")},
		{"Status", w.getStatusText(report)},
	}
	if report.Digest != "" {
		rows = append(rows, []string{"Digest", "`" + truncateString(report.Digest, 19) + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.GradeReport) string {
	switch {
	case report.TimedOut:
		return "⚠️ Canceled (partial results discarded)"
	case len(report.MissingSheets) > 0:
		return "❌ Missing sheets: " + strings.Join(report.MissingSheets, ", ")
	case report.ErrorMessage != "":
		return "❌ Error - " + report.ErrorMessage
	default:
		return "✅ Complete"
	}
}

// writeScore writes the score summary section.
func (w *MarkdownWriter) writeScore(md *markdown.Markdown, report *model.GradeReport) {
	md.H2("Score")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Fractional Score", fmt.Sprintf("%.2f", report.Score)},
			{"Percentage", fmt.Sprintf("%.0f%%", report.Percentage())},
			{"Correct Cells", fmt.Sprintf("%d/%d", report.Matches, report.TotalCells)},
			{"Band", bandLabel(report.Band())},
		},
	})
	md.PlainText("")

	if report.TotalCells > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of correct versus incorrect
// answers.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.GradeReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Answer Breakdown"),
		piechart.WithShowData(true),
	)

	if report.Matches > 0 {
		chart.LabelAndIntValue("Correct", uint64(report.Matches))
	}
	if wrong := report.TotalCells - report.Matches; wrong > 0 {
		chart.LabelAndIntValue("Incorrect", uint64(wrong))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the grading outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.GradeReport) {
	remark := report.Band().Remark()

	switch {
	case report.Failed():
		md.Cautionf("Grading did not complete: %s", statusText(report))
	case report.TotalCells == 0:
		md.Warningf("No cells were evaluated. This may indicate an issue with the submission format.")
	case report.Band() == model.BandExcellent:
		md.Tip(remark)
	case report.Band() == model.BandGood:
		md.Note(remark)
	case report.Band() == model.BandFair:
		md.Importantf("%s", remark)
	default:
		md.Warningf("%s", remark)
	}
	md.PlainText("")
}

// writeRegions writes the per-region breakdown table.
func (w *MarkdownWriter) writeRegions(md *markdown.Markdown, report *model.GradeReport) {
	if len(report.Regions) == 0 {
		return
	}

	md.H2("Regions")
	md.PlainText("")

	rows := make([][]string, len(report.Regions))
	for i, region := range report.Regions {
		rows[i] = []string{
			region.Region,
			region.Sheet,
			fmt.Sprintf("%d/%d", region.Correct, region.Total),
			fmt.Sprintf("%.0f%%", region.Percentage()),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Region", "Sheet", "Correct", "Percentage"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkipped writes the table of units that could not be graded.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, report *model.GradeReport) {
	if report.SkippedUnits() == 0 {
		return
	}

	md.H2("Skipped Units")
	md.PlainText("")

	var rows [][]string
	for _, region := range report.Regions {
		for _, s := range region.Skipped {
			rows = append(rows, []string{"`" + s.Unit + "`", truncateString(s.Reason, 80)})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Unit", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDetails writes per-cell answer tables for regions graded with
// detail.
func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, report *model.GradeReport) {
	hasDetails := false
	for _, region := range report.Regions {
		if len(region.Cells) > 0 {
			hasDetails = true
			break
		}
	}
	if !hasDetails {
		return
	}

	md.H2("Answer Details")
	md.PlainText("")

	for _, region := range report.Regions {
		if len(region.Cells) == 0 {
			continue
		}

		md.PlainText("### " + region.Region)
		md.PlainText("")

		rows := make([][]string, len(region.Cells))
		for i, cell := range region.Cells {
			result := "✅"
			if !cell.Correct {
				result = "❌"
			}
			rows[i] = []string{
				cell.Cell,
				truncateString(cell.Student, 40),
				truncateString(cell.Solution, 40),
				result,
			}
		}

		md.Table(markdown.TableSet{
			Header: []string{"Cell", "Your Answer", "Expected", "Result"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFeedback writes the student-facing feedback text.
func (w *MarkdownWriter) writeFeedback(md *markdown.Markdown, report *model.GradeReport) {
	if report.Feedback == "" {
		return
	}

	md.H2("Feedback")
	md.PlainText("")
	md.PlainText(report.Feedback)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sheetgrade](https://github.com/sheetgrade/sheetgrade)*")
}

// WriteSummary outputs the batch summary in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.BatchSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Grading Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Assignment", summary.Assignment},
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Graded", strconv.Itoa(summary.Graded)},
			{"Failed", strconv.Itoa(summary.Failed)},
		},
	})
	md.PlainText("")

	if len(summary.Rows) > 0 {
		rows := make([][]string, len(summary.Rows))
		for i, row := range summary.Rows {
			rows[i] = []string{
				"`" + row.Submission + "`",
				fmt.Sprintf("%.2f%%", row.Percentage),
				fmt.Sprintf("%d/%d", row.Matches, row.Total),
				row.Status,
			}
		}

		md.H2("Submissions")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Submission", "Percentage", "Matches", "Status"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if summary.Graded > 0 {
		md.H2("Statistics")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Average", "Highest", "Lowest"},
			Rows: [][]string{{
				fmt.Sprintf("%.2f%%", summary.Average),
				fmt.Sprintf("%.2f%%", summary.Highest),
				fmt.Sprintf("%.2f%%", summary.Lowest),
			}},
		})
		md.PlainText("")

		w.writeBandChart(md, summary)
	}

	if summary.Failed > 0 {
		md.Warningf("%d submission(s) could not be graded.", summary.Failed)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeBandChart writes a mermaid pie chart of the band distribution
// across successfully graded submissions.
func (w *MarkdownWriter) writeBandChart(md *markdown.Markdown, summary *model.BatchSummary) {
	counts := map[model.Band]int{}
	for _, row := range summary.Rows {
		if row.Status != model.StatusSuccess {
			continue
		}
		counts[model.BandForScore(row.Percentage/100)]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Band Distribution"),
		piechart.WithShowData(true),
	)

	bands := []model.Band{model.BandExcellent, model.BandGood, model.BandFair, model.BandNeedsWork}
	for _, band := range bands {
		if counts[band] > 0 {
			chart.LabelAndIntValue(bandLabel(band), uint64(counts[band]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// bandLabel renders a band name for prose, "Needs Work" rather than
// "NEEDS WORK".
func bandLabel(b model.Band) string {
	return cases.Title(language.English).String(strings.ToLower(b.String()))
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
