// Package workbook provides read access to Excel workbooks for grading.
//
// This package wraps the excelize library behind a small Document/Sheet API
// so the grading engine never touches file-format details. A Document exposes
// named sheets; a Sheet exposes cell values by A1-style coordinate, border
// inspection, and dimension queries. Documents are read-only: grading never
// mutates a submission or a solution file.
//
// Design decision: We expose cell values as strings (excelize's native
// rendering) rather than typed values. The grading comparator re-parses
// numbers itself, so a typed layer here would only duplicate that logic and
// force a schema on workbooks that do not have one.
//
// Solution extraction (copying answer sheets out of a master workbook) is the
// one write path, and it always writes a new file rather than modifying the
// source.
package workbook
