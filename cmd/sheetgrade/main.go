// Package main provides the entry point for the sheetgrade CLI.
//
// Sheetgrade grades spreadsheet assignment submissions by comparing
// answer cells against a reference solution workbook, producing a
// fractional score and student-facing feedback.
//
// Usage:
//
//	sheetgrade grade <submission.xlsx>
//	sheetgrade grade --results-dir results submissions/
//
// See --help for all available options.
package main

// main is the entry point for sheetgrade.
func main() {
	Execute()
}
