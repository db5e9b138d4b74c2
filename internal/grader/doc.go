// Package grader compares student workbooks against solution workbooks
// and tallies matching answer cells.
//
// # Purpose
//
// This package is the grading engine. Given an open student and solution
// workbook pair, it resolves which cells to grade, normalizes both sides'
// values, and counts matches per region. It knows nothing about
// assignment files, reports, or persistence; callers describe regions
// with the Region and Unit types and collect the returned outcomes.
//
// # Grading Model
//
// Every graded cell goes through the same three stages:
//  1. Normalize: currency symbols and thousands separators are stripped
//     and whitespace trimmed, so "$1,234.50" and "1234.50" are the same
//     answer.
//  2. Exclude: a cell whose solution value normalizes to empty is not
//     counted at all. Blank reference cells never affect the score.
//  3. Compare: values that both parse as numbers match within an
//     absolute tolerance; anything else falls back to exact, case
//     sensitive string equality.
//
// # Selection Strategies
//
// A region grades one or more selection units. Each unit picks its cells
// one of three ways:
//   - SelectRange: every cell of a rectangular range, rows top to
//     bottom, columns left to right
//   - SelectCell: a single explicit coordinate
//   - SelectBorders: every cell of the solution sheet that carries an
//     edge border, letting the solution workbook itself mark the answer
//     cells through formatting
//
// # Failure Isolation
//
// Units fail independently. A malformed range or an unreadable cell is
// recorded as a skipped unit with a reason and grading continues with
// the remaining units. GradeRegion never returns an error; only Open
// and VerifySheets can abort a grading session.
//
// # Usage
//
//	g := grader.New(grader.DefaultOptions())
//	if err := g.Open("alice.xlsx", "solution.xlsx"); err != nil {
//		return err
//	}
//	defer g.Close()
//
//	if err := g.VerifySheets([]string{"Quiz"}, []string{"Quiz"}); err != nil {
//		return err
//	}
//
//	outcome := g.GradeRegion(ctx, grader.Region{
//		Name:  "Quiz",
//		Sheet: "Quiz",
//		Units: []grader.Unit{{Kind: grader.SelectRange, Ref: "B2:B10"}},
//	})
package grader
