package workbook

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ExtractResult summarizes one solution extraction.
type ExtractResult struct {
	// Sheets lists the sheet names copied into the destination file.
	Sheets []string

	// Cells is the number of non-empty cells copied across all sheets.
	Cells int
}

// ExtractSheets copies the named sheets from the workbook at srcPath into a
// new workbook at dstPath, preserving cell values and border styles.
//
// This builds a standalone solution file from an instructor's master
// workbook. Only values and edge borders survive the copy: values are what
// grading compares, borders are what marks answer cells. Fonts, fills, and
// formulas are deliberately left behind, so the extracted file carries no
// worked solutions beyond the answers themselves (formula cells are copied
// as their calculated values).
func ExtractSheets(srcPath, dstPath string, sheets []string) (*ExtractResult, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	src, err := excelize.OpenFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open master workbook %s: %w", srcPath, err)
	}
	defer src.Close()

	for _, name := range sheets {
		if !slices.Contains(src.GetSheetList(), name) {
			return nil, &SheetNotFoundError{Sheet: name}
		}
	}

	dst := excelize.NewFile()
	defer dst.Close()

	res := &ExtractResult{}
	// Border style IDs are file-scoped, so styles are re-created in the
	// destination and cached by source ID.
	styleBySrc := make(map[int]int)

	for _, name := range sheets {
		if _, err := dst.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		copied, err := copySheet(src, dst, name, styleBySrc)
		if err != nil {
			return nil, err
		}
		res.Sheets = append(res.Sheets, name)
		res.Cells += copied
	}

	// Drop excelize's default sheet unless it was one of the targets.
	if !slices.Contains(sheets, "Sheet1") {
		if err := dst.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("remove default sheet: %w", err)
		}
	}

	if err := dst.SaveAs(dstPath); err != nil {
		return nil, fmt.Errorf("save solution workbook %s: %w", dstPath, err)
	}
	return res, nil
}

// copySheet copies values and edge borders of one sheet and returns the
// number of non-empty cells copied.
func copySheet(src, dst *excelize.File, sheet string, styleBySrc map[int]int) (int, error) {
	cols, rows, err := sheetExtent(src, sheet)
	if err != nil {
		return 0, err
	}

	copied := 0
	for row := 1; row <= rows; row++ {
		for col := 1; col <= cols; col++ {
			cell, _ := excelize.CoordinatesToCellName(col, row)

			if err := copyValue(src, dst, sheet, cell, &copied); err != nil {
				return 0, err
			}
			if err := copyBorder(src, dst, sheet, cell, styleBySrc); err != nil {
				return 0, err
			}
		}
	}
	return copied, nil
}

// copyValue copies one cell's value, keeping numeric cells numeric so the
// extracted solution round-trips the same way the master does.
func copyValue(src, dst *excelize.File, sheet, cell string, copied *int) error {
	raw, err := src.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read cell %s!%s: %w", sheet, cell, err)
	}
	if raw == "" {
		return nil
	}

	cellType, err := src.GetCellType(sheet, cell)
	if err != nil {
		return fmt.Errorf("read type of %s!%s: %w", sheet, cell, err)
	}

	var value any = raw
	if cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeFormula {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			value = f
		}
	}

	if err := dst.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("write cell %s!%s: %w", sheet, cell, err)
	}
	*copied++
	return nil
}

// copyBorder recreates the source cell's edge borders in the destination.
func copyBorder(src, dst *excelize.File, sheet, cell string, styleBySrc map[int]int) error {
	srcID, err := src.GetCellStyle(sheet, cell)
	if err != nil {
		return fmt.Errorf("read style of %s!%s: %w", sheet, cell, err)
	}
	if srcID == 0 {
		return nil
	}

	dstID, seen := styleBySrc[srcID]
	if !seen {
		style, err := src.GetStyle(srcID)
		if err != nil {
			return fmt.Errorf("resolve style %d in %s: %w", srcID, sheet, err)
		}
		if hasEdgeBorder(style) {
			dstID, err = dst.NewStyle(&excelize.Style{Border: style.Border})
			if err != nil {
				return fmt.Errorf("create border style: %w", err)
			}
		}
		styleBySrc[srcID] = dstID
	}

	if dstID == 0 {
		return nil
	}
	if err := dst.SetCellStyle(sheet, cell, cell, dstID); err != nil {
		return fmt.Errorf("apply border style to %s!%s: %w", sheet, cell, err)
	}
	return nil
}
