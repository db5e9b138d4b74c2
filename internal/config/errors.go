package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Assignment.Validate()
// and provide specific information about what is wrong.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Errors that need dynamic detail (a region name,
// an index) are wrapped with fmt.Errorf("%w: ...") at the call site.
var (
	// ErrNoSubmission is returned when no submission workbook is specified.
	ErrNoSubmission = errors.New("no submission specified: provide at least one workbook file or directory")

	// ErrNoSolution is returned when neither the --solution flag nor the
	// assignment file names a reference solution workbook.
	ErrNoSolution = errors.New("no solution workbook: set solution in the assignment file or pass --solution")

	// ErrInvalidTolerance is returned when the numeric tolerance is negative.
	ErrInvalidTolerance = errors.New("invalid tolerance: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown, and --feedback-json is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --json, --markdown, --feedback-json")

	// ErrNoAssignmentName is returned when the assignment file has an
	// empty assignment name.
	ErrNoAssignmentName = errors.New("assignment name must not be empty")

	// ErrNoRegions is returned when the assignment file defines no
	// grading regions.
	ErrNoRegions = errors.New("assignment defines no grading regions")

	// ErrInvalidRegion is returned (wrapped with the region's name or
	// index) when a region definition is unusable: missing name, missing
	// sheet, or no selection strategy at all.
	ErrInvalidRegion = errors.New("invalid region")
)
