// Package report provides output writers for grade reports.
//
// Writers implement the Writer interface for single-submission reports;
// writers that can also render a whole batch run implement
// SummaryWriter. Available formats:
//   - TextWriter: human-readable text for terminal display
//   - JSONWriter: full report as JSON for tool integration
//   - FeedbackWriter: the minimal feedback document grading platforms
//     consume, a JSON object with fractionalScore and feedback
//   - MarkdownWriter: Markdown with tables and mermaid charts
//   - CSVWriter: one row per submission for spreadsheet import
//   - XLSXWriter: batch summary as a workbook
//
// MultiWriter fans a report out to several writers at once, for
// example terminal text plus a JSON file.
package report
