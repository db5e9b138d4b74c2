package model

import (
	"path/filepath"
	"sort"
	"time"
)

// Summary row status values.
const (
	// StatusSuccess marks a submission that was graded to completion.
	StatusSuccess = "Success"

	// StatusError marks a submission whose grading failed (missing
	// sheets, unreadable file, cancellation).
	StatusError = "Error"
)

// BatchSummary aggregates the results of grading multiple submissions in
// one run. It backs the console summary table and the CSV summary file.
//
// Design decision: We compute the summary from finished reports rather
// than accumulating statistics during the run. Reports arrive in
// completion order under concurrency; deriving the summary afterwards
// keeps ordering and averaging deterministic.
type BatchSummary struct {
	// Assignment is the assignment the run graded.
	Assignment string `json:"assignment"`

	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Rows holds one entry per submission, sorted by file name.
	Rows []SummaryRow `json:"rows"`

	// Graded is the number of successfully graded submissions.
	Graded int `json:"graded"`

	// Failed is the number of submissions whose grading failed.
	Failed int `json:"failed"`

	// Average, Highest, and Lowest are percentage statistics over the
	// successfully graded submissions. All zero when none succeeded.
	Average float64 `json:"average_percentage"`
	Highest float64 `json:"highest_percentage"`
	Lowest  float64 `json:"lowest_percentage"`
}

// SummaryRow is one submission's line in the batch summary.
type SummaryRow struct {
	// Submission is the base file name of the submission.
	Submission string `json:"submission"`

	// Percentage is the score as a percentage in [0, 100].
	Percentage float64 `json:"percentage"`

	// Matches and Total are the overall cell tallies.
	Matches int `json:"matches"`
	Total   int `json:"total"`

	// Status is StatusSuccess or StatusError.
	Status string `json:"status"`

	// Detail carries the error message for failed submissions.
	Detail string `json:"detail,omitempty"`
}

// NewBatchSummary builds a summary from finalized grade reports.
func NewBatchSummary(assignment string, reports []*GradeReport) *BatchSummary {
	s := &BatchSummary{
		Assignment:  assignment,
		GeneratedAt: time.Now(),
	}

	sum := 0.0
	for _, r := range reports {
		row := SummaryRow{
			Submission: filepath.Base(r.Submission),
			Percentage: r.Percentage(),
			Matches:    r.Matches,
			Total:      r.TotalCells,
			Status:     StatusSuccess,
		}

		if r.Failed() {
			row.Status = StatusError
			row.Detail = r.ErrorMessage
			if row.Detail == "" && len(r.MissingSheets) > 0 {
				row.Detail = r.Feedback
			}
			s.Failed++
		} else {
			if s.Graded == 0 || row.Percentage > s.Highest {
				s.Highest = row.Percentage
			}
			if s.Graded == 0 || row.Percentage < s.Lowest {
				s.Lowest = row.Percentage
			}
			sum += row.Percentage
			s.Graded++
		}

		s.Rows = append(s.Rows, row)
	}

	if s.Graded > 0 {
		s.Average = sum / float64(s.Graded)
	}

	sort.Slice(s.Rows, func(i, j int) bool {
		return s.Rows[i].Submission < s.Rows[j].Submission
	})

	return s
}
