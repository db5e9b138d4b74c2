package grader

import (
	"errors"
	"strings"
)

// Grading session errors.
var (
	// ErrNotOpened is returned when a grading operation runs before
	// Open has loaded the workbooks.
	ErrNotOpened = errors.New("workbooks are not opened")
)

// MissingSheetsError reports required sheets that are absent from the
// student submission. It carries the sheet names so feedback can tell
// the student exactly what the workbook lacks.
type MissingSheetsError struct {
	// Sheets holds the missing sheet names in assignment order.
	Sheets []string
}

// Error implements the error interface.
func (e *MissingSheetsError) Error() string {
	return "missing sheets in submission: " + strings.Join(e.Sheets, ", ")
}
