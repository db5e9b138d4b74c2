package model

import (
	"errors"
	"testing"
)

func TestNewBatchSummary(t *testing.T) {
	t.Parallel()

	t.Run("aggregates graded submissions", func(t *testing.T) {
		t.Parallel()

		a := NewGradeReport("/tmp/class/bob.xlsx", "Final Project")
		a.AddRegion(RegionOutcome{Region: "A", Sheet: "A", Correct: 9, Total: 10})
		a.Finalize()

		b := NewGradeReport("/tmp/class/alice.xlsx", "Final Project")
		b.AddRegion(RegionOutcome{Region: "A", Sheet: "A", Correct: 5, Total: 10})
		b.Finalize()

		s := NewBatchSummary("Final Project", []*GradeReport{a, b})

		if s.Assignment != "Final Project" {
			t.Errorf("Assignment = %q, want %q", s.Assignment, "Final Project")
		}
		if s.Graded != 2 || s.Failed != 0 {
			t.Errorf("Graded/Failed = %d/%d, want 2/0", s.Graded, s.Failed)
		}
		if s.Average != 70 {
			t.Errorf("Average = %v, want 70", s.Average)
		}
		if s.Highest != 90 {
			t.Errorf("Highest = %v, want 90", s.Highest)
		}
		if s.Lowest != 50 {
			t.Errorf("Lowest = %v, want 50", s.Lowest)
		}
	})

	t.Run("rows are sorted by file name", func(t *testing.T) {
		t.Parallel()

		a := NewGradeReport("zoe.xlsx", "x")
		a.Finalize()
		b := NewGradeReport("adam.xlsx", "x")
		b.Finalize()

		s := NewBatchSummary("x", []*GradeReport{a, b})

		if len(s.Rows) != 2 {
			t.Fatalf("len(Rows) = %d, want 2", len(s.Rows))
		}
		if s.Rows[0].Submission != "adam.xlsx" || s.Rows[1].Submission != "zoe.xlsx" {
			t.Errorf("rows not sorted: %q, %q", s.Rows[0].Submission, s.Rows[1].Submission)
		}
	})

	t.Run("failed submissions are excluded from statistics", func(t *testing.T) {
		t.Parallel()

		ok := NewGradeReport("good.xlsx", "x")
		ok.AddRegion(RegionOutcome{Region: "A", Sheet: "A", Correct: 8, Total: 10})
		ok.Finalize()

		bad := NewGradeReport("broken.xlsx", "x")
		bad.Error = errors.New("not a workbook")
		bad.Finalize()

		s := NewBatchSummary("x", []*GradeReport{ok, bad})

		if s.Graded != 1 || s.Failed != 1 {
			t.Errorf("Graded/Failed = %d/%d, want 1/1", s.Graded, s.Failed)
		}
		if s.Average != 80 || s.Highest != 80 || s.Lowest != 80 {
			t.Errorf("stats = %v/%v/%v, want 80/80/80", s.Average, s.Highest, s.Lowest)
		}

		var errRow SummaryRow
		for _, row := range s.Rows {
			if row.Submission == "broken.xlsx" {
				errRow = row
			}
		}
		if errRow.Status != StatusError {
			t.Errorf("failed row status = %q, want %q", errRow.Status, StatusError)
		}
		if errRow.Detail == "" {
			t.Error("failed row should carry the error detail")
		}
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()

		s := NewBatchSummary("x", nil)
		if s.Graded != 0 || s.Failed != 0 || s.Average != 0 {
			t.Errorf("empty summary = %+v, want zeroes", s)
		}
	})
}
