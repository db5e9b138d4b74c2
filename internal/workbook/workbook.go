package workbook

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Document is a read-only view of an open Excel workbook.
//
// A Document is owned by the caller for the duration of one grading pass:
// open it, hand it to the grader, close it. It is not safe for concurrent
// use; batch grading gives each worker its own Document.
type Document struct {
	// f is the underlying excelize file handle.
	f *excelize.File

	// path is the file the document was opened from, kept for error
	// messages and report metadata.
	path string

	// raw controls whether cell values are returned unformatted. When
	// false (the default) excelize applies the cell's number format, so a
	// currency cell reads as "$1,234.50" rather than "1234.5".
	raw bool
}

// Option configures a Document at open time.
type Option func(*Document)

// WithRawValues returns cell values without number formatting applied.
func WithRawValues() Option {
	return func(d *Document) {
		d.raw = true
	}
}

// workbookExtensions are the file extensions this package opens. All
// four are zip-based formats excelize reads.
var workbookExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// IsWorkbookFile reports whether name looks like an openable workbook.
// Excel's "~$" owner lock files are rejected: they appear next to any
// workbook someone has open and are not spreadsheets.
func IsWorkbookFile(name string) bool {
	if strings.HasPrefix(name, "~$") {
		return false
	}
	return slices.Contains(workbookExtensions, strings.ToLower(filepath.Ext(name)))
}

// Open opens the workbook at path for reading.
//
// The returned Document must be closed by the caller. Formula cells read as
// their last calculated value; this package never evaluates formulas.
func Open(path string, opts ...Option) (*Document, error) {
	if !IsWorkbookFile(filepath.Base(path)) {
		return nil, fmt.Errorf("open workbook %s: %w", path, ErrNotExcelFile)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	d := &Document{
		f:    f,
		path: path,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close releases the underlying file handle. A nil Document closes cleanly
// so callers can defer Close unconditionally.
func (d *Document) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	if err := d.f.Close(); err != nil {
		return fmt.Errorf("close workbook %s: %w", d.path, err)
	}
	d.f = nil
	return nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// SheetNames returns the workbook's sheet names in workbook order.
func (d *Document) SheetNames() []string {
	return d.f.GetSheetList()
}

// HasSheet reports whether the workbook contains a sheet with the exact
// given name. Matching is case-sensitive, mirroring how submissions are
// authored from a template: a renamed sheet is a broken submission.
func (d *Document) HasSheet(name string) bool {
	return slices.Contains(d.f.GetSheetList(), name)
}

// MissingSheets returns the subset of required sheet names absent from the
// workbook, in the order they were requested. Duplicate requirements are
// reported once.
func (d *Document) MissingSheets(required []string) []string {
	var missing []string
	for _, name := range required {
		if !d.HasSheet(name) && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Sheet returns an accessor for the named sheet, or a *SheetNotFoundError
// if the workbook has no such sheet.
func (d *Document) Sheet(name string) (*Sheet, error) {
	if !d.HasSheet(name) {
		return nil, &SheetNotFoundError{Sheet: name}
	}
	return &Sheet{doc: d, name: name}, nil
}
