package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the grading behavior instructors already rely on; anything
// user-visible can be overridden via CLI flags or the assignment file.
const (
	// DefaultTolerance is the absolute difference two numeric answers may
	// have and still count as equal. Assignment answers are small-scale
	// numbers (scores, percentages, dollar amounts), so an absolute bound
	// of one cent / one hundredth behaves predictably where a relative
	// tolerance would not.
	DefaultTolerance = 0.01

	// DefaultBatchSize is the number of submissions graded concurrently
	// when a run contains multiple files. Grading is dominated by xlsx
	// decompression, so a small pool saturates a typical machine without
	// ballooning memory (each worker holds two open workbooks).
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "sheetgrade"
)

// Config holds all configuration options for one sheetgrade invocation.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., GradeConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// AssignmentPath is the path to the assignment definition file.
	// If empty, the tool searches for sheetgrade.yaml in the current
	// directory and then in the XDG config directory.
	AssignmentPath string

	// SolutionPath is the path to the reference solution workbook.
	// When empty, the assignment file's solution path is used.
	SolutionPath string

	// Tolerance overrides the numeric comparison tolerance when positive.
	// Zero means "use the assignment's tolerance" (which itself defaults
	// to DefaultTolerance).
	Tolerance float64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent grading workers when
	// processing multiple submissions.
	BatchSize int

	// JSONReport enables full JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport and
	// FeedbackJSON.
	JSONReport bool

	// MarkdownReport enables Markdown report output with tables and
	// charts. Mutually exclusive with JSONReport and FeedbackJSON.
	MarkdownReport bool

	// FeedbackJSON emits only the grading contract record
	// {"fractionalScore": ..., "feedback": ...} per submission, the format
	// downstream grading platforms ingest. Mutually exclusive with
	// JSONReport and MarkdownReport.
	FeedbackJSON bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ResultsDir, when set, receives one "<name>_feedback.txt" per graded
	// submission plus a timestamped CSV summary of the whole run.
	ResultsDir string

	// Targets is the list of submission workbooks to grade. Entries are
	// file paths; the CLI expands directories before populating this.
	Targets []string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether grading results are recorded in the
	// history database. On by default; --no-save disables it.
	SaveToDB bool

	// RawValues reads cell values without number formatting applied.
	// The default (formatted) matches what the student sees in Excel.
	RawValues bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (batch size, DB
// persistence). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BatchSize: DefaultBatchSize,
		DBDir:     XDGDataDir(),
		SaveToDB:  true,
	}
}

// XDGDataDir returns the XDG data directory for sheetgrade.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sheetgrade
// On macOS: ~/Library/Application Support/sheetgrade
// On Windows: %LOCALAPPDATA%\sheetgrade
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sheetgrade.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/sheetgrade
// On macOS: ~/Library/Application Support/sheetgrade
// On Windows: %APPDATA%\sheetgrade
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any grading begins.
// Whether a solution workbook is available can only be judged after the
// assignment file is loaded, so that check lives with the merge, not here.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoSubmission
	}

	if c.Tolerance < 0 {
		return ErrInvalidTolerance
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// Exactly one report format may be selected.
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.FeedbackJSON} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
