package grader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sheetgrade/sheetgrade/internal/workbook"
)

// Options configures a grading session.
type Options struct {
	// Tolerance is the absolute numeric comparison tolerance. Zero
	// requires numerically identical answers.
	Tolerance float64

	// RawValues reads underlying cell values instead of the formatted
	// values a spreadsheet application displays.
	RawValues bool

	// Logger receives warnings about skipped units. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the standard grading options.
func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
	}
}

// Grader grades one student workbook against one solution workbook.
// The zero value is not usable; create graders with New and load the
// workbook pair with Open.
//
// A Grader is a single-submission session and is not safe for
// concurrent use. Batch runs create one grader per submission.
type Grader struct {
	// student is the open submission workbook.
	student *workbook.Document

	// solution is the open reference workbook.
	solution *workbook.Document

	// cmp decides per-cell matches.
	cmp Comparator

	// raw selects raw instead of formatted cell values.
	raw bool

	// logger receives skip warnings.
	logger *slog.Logger
}

// New creates a grader with the given options.
func New(opts Options) *Grader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Grader{
		cmp:    NewComparator(opts.Tolerance),
		raw:    opts.RawValues,
		logger: logger,
	}
}

// Comparator returns the comparator the session grades with.
func (g *Grader) Comparator() Comparator {
	return g.cmp
}

// Open loads the student submission and the solution workbook. On
// error neither workbook remains open.
func (g *Grader) Open(studentPath, solutionPath string) error {
	var opts []workbook.Option
	if g.raw {
		opts = append(opts, workbook.WithRawValues())
	}

	student, err := workbook.Open(studentPath, opts...)
	if err != nil {
		return fmt.Errorf("open submission: %w", err)
	}

	solution, err := workbook.Open(solutionPath, opts...)
	if err != nil {
		if cerr := student.Close(); cerr != nil {
			g.logger.Warn("closing submission workbook", "error", cerr)
		}
		return fmt.Errorf("open solution: %w", err)
	}

	g.student = student
	g.solution = solution
	return nil
}

// Close releases both workbooks. It is safe to call on a grader that
// never opened them and safe to call twice.
func (g *Grader) Close() error {
	var errs []error
	if g.student != nil {
		errs = append(errs, g.student.Close())
		g.student = nil
	}
	if g.solution != nil {
		errs = append(errs, g.solution.Close())
		g.solution = nil
	}
	return errors.Join(errs...)
}

// VerifySheets checks that both workbooks contain the sheets grading
// needs. Missing student sheets produce a *MissingSheetsError so the
// caller can name them in student feedback; a missing solution sheet
// is a setup problem and comes back as a plain error.
//
// Grading a submission with missing sheets would silently score the
// absent answers as wrong, so callers verify before grading regions.
func (g *Grader) VerifySheets(studentSheets, solutionSheets []string) error {
	if g.student == nil || g.solution == nil {
		return ErrNotOpened
	}

	if missing := g.student.MissingSheets(studentSheets); len(missing) > 0 {
		return &MissingSheetsError{Sheets: missing}
	}

	if missing := g.solution.MissingSheets(solutionSheets); len(missing) > 0 {
		return fmt.Errorf("solution workbook is missing sheets: %s", strings.Join(missing, ", "))
	}

	return nil
}
