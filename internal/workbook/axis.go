package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Range is a rectangular cell area with inclusive corners. Corners are
// normalized so Start is always the top-left cell and End the bottom-right,
// regardless of how the reference was written.
type Range struct {
	// StartCol and StartRow are the 1-based top-left coordinates.
	StartCol, StartRow int

	// EndCol and EndRow are the 1-based bottom-right coordinates.
	EndCol, EndRow int
}

// ParseRange parses an A1-style range reference such as "B2:D4". A single
// cell reference ("K21") parses as a 1x1 range. Absolute markers ("$") are
// accepted and ignored.
func ParseRange(ref string) (Range, error) {
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(strings.TrimSpace(parts[0]))
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, ref, err)
	}

	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		endCol, endRow, err = excelize.CellNameToCoordinates(strings.TrimSpace(parts[1]))
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", ErrInvalidRange, ref, err)
		}
	}

	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}

	return Range{
		StartCol: startCol,
		StartRow: startRow,
		EndCol:   endCol,
		EndRow:   endRow,
	}, nil
}

// Count returns the number of cells covered by the range.
func (r Range) Count() int {
	return (r.EndCol - r.StartCol + 1) * (r.EndRow - r.StartRow + 1)
}

// Cells returns every coordinate in the range, rows top-to-bottom and
// columns left-to-right within each row.
func (r Range) Cells() []string {
	cells := make([]string, 0, r.Count())
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			// Coordinates come from a successful parse, so the
			// conversion back cannot fail.
			cell, _ := excelize.CoordinatesToCellName(col, row)
			cells = append(cells, cell)
		}
	}
	return cells
}

// String returns the normalized A1-style reference for the range.
func (r Range) String() string {
	start, _ := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	if r.Count() == 1 {
		return start
	}
	end, _ := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	return start + ":" + end
}

// ExpandRange parses ref and returns its coordinates in grading order.
func ExpandRange(ref string) ([]string, error) {
	r, err := ParseRange(ref)
	if err != nil {
		return nil, err
	}
	return r.Cells(), nil
}

// ValidateCell checks that ref is a parseable single-cell coordinate.
func ValidateCell(ref string) error {
	if _, _, err := excelize.CellNameToCoordinates(strings.TrimSpace(ref)); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidCoordinate, ref, err)
	}
	return nil
}
