package grader

import (
	"fmt"

	"github.com/sheetgrade/sheetgrade/internal/workbook"
)

// SelectionKind identifies how a selection unit picks the cells it
// grades.
type SelectionKind int

const (
	// SelectRange grades every cell of a rectangular range, rows top
	// to bottom and columns left to right.
	SelectRange SelectionKind = iota

	// SelectCell grades a single explicit coordinate.
	SelectCell

	// SelectBorders grades every cell of the solution sheet that
	// carries a border on at least one edge. The solution workbook
	// marks its own answer cells through formatting.
	SelectBorders
)

// String returns the kind name used in logs and skip reasons.
func (k SelectionKind) String() string {
	switch k {
	case SelectRange:
		return "range"
	case SelectCell:
		return "cell"
	case SelectBorders:
		return "borders"
	default:
		return "unknown"
	}
}

// Unit is one independently graded selection inside a region. A unit
// that cannot be resolved, for example a malformed range reference,
// is skipped with a recorded reason and never aborts the remaining
// units.
type Unit struct {
	// Kind selects the resolution strategy.
	Kind SelectionKind

	// Ref is the cell or range reference. SelectBorders ignores it
	// and derives its cells from the solution sheet instead.
	Ref string
}

// Label returns the identifier used for this unit in skip records and
// logs.
func (u Unit) Label() string {
	if u.Kind == SelectBorders {
		return "bordered cells"
	}
	return u.Ref
}

// resolve expands the unit into the ordered list of coordinates it
// covers. SelectBorders scans the solution sheet; the other kinds only
// parse the reference.
func (u Unit) resolve(solution *workbook.Sheet) ([]string, error) {
	switch u.Kind {
	case SelectRange:
		return workbook.ExpandRange(u.Ref)
	case SelectCell:
		if err := workbook.ValidateCell(u.Ref); err != nil {
			return nil, err
		}
		return []string{u.Ref}, nil
	case SelectBorders:
		return solution.BorderedCells()
	default:
		return nil, fmt.Errorf("unknown selection kind %d", int(u.Kind))
	}
}

// Region describes one gradable area of a workbook: a named group of
// selection units on a student sheet, compared cell by cell against
// the same coordinates of a solution sheet.
type Region struct {
	// Name identifies the region in feedback and reports.
	Name string

	// Sheet is the student sheet holding the answers.
	Sheet string

	// SolutionSheet is the sheet of the solution workbook to compare
	// against. Empty means the same name as Sheet.
	SolutionSheet string

	// Units are the selections graded within the region, in order.
	// Units are independent: a coordinate covered by two units is
	// counted twice.
	Units []Unit

	// Detail requests per-cell results in the region outcome.
	Detail bool
}

// solutionSheet returns the solution sheet name, falling back to the
// student sheet name.
func (r Region) solutionSheet() string {
	if r.SolutionSheet != "" {
		return r.SolutionSheet
	}
	return r.Sheet
}
