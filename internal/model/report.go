package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// GradeReport is the result of grading one submission.
// It accumulates region outcomes during grading and, once finalized,
// carries the overall score and the student-facing feedback text.
//
// Design decision: We use a single struct for both the in-progress and the
// finished state rather than separate builder/result types. The pipeline
// steps fill it incrementally, Finalize() seals it, and the same value is
// what gets serialized to JSON and stored in the history database.
type GradeReport struct {
	// Submission is the path of the graded workbook.
	Submission string `json:"submission"`

	// Assignment is the assignment name from the assignment file.
	Assignment string `json:"assignment"`

	// DateGraded is the timestamp when grading was performed.
	DateGraded time.Time `json:"date_graded"`

	// Digest is the SHA3-256 fingerprint of the submission file, used to
	// recognize resubmissions of identical content in the history.
	Digest string `json:"digest,omitempty"`

	// Score is the fractional score in [0, 1]: correct/total rounded to
	// two decimal places, or exactly 0 when nothing was gradable.
	Score float64 `json:"fractional_score"`

	// Matches is the number of cells that matched across all regions.
	Matches int `json:"matches"`

	// TotalCells is the number of cells compared across all regions.
	TotalCells int `json:"total_cells"`

	// Feedback is the student-facing feedback text.
	Feedback string `json:"feedback"`

	// Regions holds one outcome per graded region, in assignment order.
	Regions []RegionOutcome `json:"regions,omitempty"`

	// MissingSheets lists required sheets absent from the submission.
	// Non-empty means grading stopped before any region was compared.
	MissingSheets []string `json:"missing_sheets,omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if grading was canceled before completion.
	// Partial tallies are discarded; the score is 0.
	TimedOut bool `json:"timed_out"`

	// Error contains any error that stopped grading.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional

	// finalized guards against double score/feedback computation.
	finalized bool
}

// NewGradeReport creates a report for one submission of the named
// assignment.
func NewGradeReport(submission, assignment string) *GradeReport {
	return &GradeReport{
		Submission: submission,
		Assignment: assignment,
		DateGraded: time.Now(),
	}
}

// AddRegion records one region's outcome and folds its counts into the
// overall tally.
func (r *GradeReport) AddRegion(outcome RegionOutcome) {
	r.Regions = append(r.Regions, outcome)
	r.Matches += outcome.Correct
	r.TotalCells += outcome.Total
}

// Band returns the qualitative tier for the report's score.
func (r *GradeReport) Band() Band {
	return BandForScore(r.Score)
}

// Percentage returns the score as a percentage in [0, 100].
func (r *GradeReport) Percentage() float64 {
	return r.Score * 100
}

// Failed reports whether grading stopped before producing a real score.
func (r *GradeReport) Failed() bool {
	return r.Error != nil || len(r.MissingSheets) > 0 || r.TimedOut
}

// SkippedUnits returns the total number of selection units skipped across
// all regions.
func (r *GradeReport) SkippedUnits() int {
	n := 0
	for _, o := range r.Regions {
		n += len(o.Skipped)
	}
	return n
}

// Finalize computes the score and feedback from the accumulated state.
// It is idempotent and total: whatever happened during grading, the report
// afterwards holds a well-formed (score, feedback) pair. Failure cases
// score 0 with a diagnostic message; a normal pass scores correct/total
// rounded to two decimals with the per-region breakdown and a closing
// remark for the band.
func (r *GradeReport) Finalize() {
	if r.finalized {
		return
	}
	r.finalized = true

	if r.Error != nil && r.ErrorMessage == "" {
		r.ErrorMessage = r.Error.Error()
	}

	switch {
	case len(r.MissingSheets) > 0:
		r.Score = 0.0
		r.Feedback = "Missing sheets in submission: " + strings.Join(r.MissingSheets, ", ")
	case r.TimedOut:
		r.Score = 0.0
		r.Feedback = "Grading was canceled before completion. Please try again."
	case r.Error != nil:
		r.Score = 0.0
		r.Feedback = fmt.Sprintf("Error grading submission: %s", r.ErrorMessage)
	case r.TotalCells == 0:
		r.Score = 0.0
		r.Feedback = "No cells were evaluated. This may indicate an issue with the submission format."
	default:
		r.Score = math.Round(float64(r.Matches)/float64(r.TotalCells)*100) / 100
		r.Feedback = r.composeFeedback()
	}
}

// composeFeedback renders the standard feedback text: overall line,
// per-region breakdown, closing remark.
func (r *GradeReport) composeFeedback() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You scored %d/%d correct (%.0f%%).\n\n", r.Matches, r.TotalCells, r.Score*100)

	lines := make([]string, 0, len(r.Regions))
	for _, o := range r.Regions {
		lines = append(lines, fmt.Sprintf("%s: %d/%d (%.0f%%)", o.Region, o.Correct, o.Total, o.Percentage()))
	}
	b.WriteString(strings.Join(lines, "\n"))

	b.WriteString("\n\n")
	b.WriteString(r.Band().Remark())
	return b.String()
}
