package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet provides cell access within one worksheet of an open Document.
type Sheet struct {
	doc  *Document
	name string
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// Value returns the value of the cell at the given A1-style coordinate.
// Cells outside the sheet's used area read as the empty string, which is
// how Excel itself treats them; only an unparseable coordinate is an error.
func (s *Sheet) Value(cell string) (string, error) {
	v, err := s.doc.f.GetCellValue(s.name, cell, excelize.Options{RawCellValue: s.doc.raw})
	if err != nil {
		return "", fmt.Errorf("read cell %s!%s: %w", s.name, cell, err)
	}
	return v, nil
}

// Dimensions returns the sheet's extent as (columns, rows). The extent is
// the larger of the sheet's recorded dimension reference and the actual
// data, since either can undercount after edits.
func (s *Sheet) Dimensions() (int, int, error) {
	return sheetExtent(s.doc.f, s.name)
}

// BorderedCells scans every cell in the sheet and returns the coordinates
// of cells whose style draws a border on at least one of the four edges,
// rows top-to-bottom and columns left-to-right. This is how a solution
// workbook marks its answer cells.
func (s *Sheet) BorderedCells() ([]string, error) {
	cols, rows, err := s.Dimensions()
	if err != nil {
		return nil, err
	}

	// Style IDs repeat heavily across a sheet, so border lookups are
	// cached per style rather than resolved per cell.
	borderedStyle := make(map[int]bool)

	var cells []string
	for row := 1; row <= rows; row++ {
		for col := 1; col <= cols; col++ {
			cell, _ := excelize.CoordinatesToCellName(col, row)

			styleID, err := s.doc.f.GetCellStyle(s.name, cell)
			if err != nil {
				return nil, fmt.Errorf("read style of %s!%s: %w", s.name, cell, err)
			}

			bordered, seen := borderedStyle[styleID]
			if !seen {
				style, err := s.doc.f.GetStyle(styleID)
				if err != nil {
					return nil, fmt.Errorf("resolve style %d in %s: %w", styleID, s.name, err)
				}
				bordered = hasEdgeBorder(style)
				borderedStyle[styleID] = bordered
			}

			if bordered {
				cells = append(cells, cell)
			}
		}
	}
	return cells, nil
}

// hasEdgeBorder reports whether the style draws any of the four edge
// borders. Diagonal borders do not qualify a cell as an answer cell.
func hasEdgeBorder(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	for _, b := range style.Border {
		switch b.Type {
		case "left", "right", "top", "bottom":
			if b.Style != 0 {
				return true
			}
		}
	}
	return false
}

// sheetExtent computes the (columns, rows) extent of a sheet from its
// dimension reference merged with the cells that actually hold data.
func sheetExtent(f *excelize.File, sheet string) (int, int, error) {
	cols, rows := 0, 0

	if dim, err := f.GetSheetDimension(sheet); err == nil && dim != "" {
		if r, err := ParseRange(dim); err == nil {
			cols, rows = r.EndCol, r.EndRow
		}
	}

	data, err := f.GetRows(sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("read rows of %s: %w", sheet, err)
	}
	if len(data) > rows {
		rows = len(data)
	}
	for _, row := range data {
		if len(row) > cols {
			cols = len(row)
		}
	}

	return cols, rows, nil
}
