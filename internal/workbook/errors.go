package workbook

import (
	"errors"
	"fmt"
)

// ErrInvalidRange indicates a range reference that cannot be parsed
// (e.g. "K4:" or "4K:K6").
var ErrInvalidRange = errors.New("invalid range reference")

// ErrInvalidCoordinate indicates a cell reference that cannot be parsed
// (e.g. "K" or "42").
var ErrInvalidCoordinate = errors.New("invalid cell coordinate")

// ErrNoSheets indicates an extraction request with an empty sheet list.
var ErrNoSheets = errors.New("no sheets specified")

// ErrNotExcelFile indicates a path that is not an openable workbook,
// either by extension or because it is an Excel owner lock file.
var ErrNotExcelFile = errors.New("not an Excel workbook")

// SheetNotFoundError indicates a lookup of a sheet name that does not exist
// in the workbook. Sheet names are matched exactly, including case.
type SheetNotFoundError struct {
	// Sheet is the requested sheet name.
	Sheet string
}

// Error implements the error interface.
func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in workbook", e.Sheet)
}
