package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sheetgrade/sheetgrade/internal/config"
	"github.com/sheetgrade/sheetgrade/internal/database"
)

// writeWorkbook writes a workbook to the exact path given. Integration
// fixtures share one directory so that the relative solution path in
// the assignment file resolves against it.
func writeWorkbook(t *testing.T, path string, build func(f *excelize.File)) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if build != nil {
		build(f)
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save %s: %v", path, err)
	}
}

// gradingFixture is a complete assignment on disk: the assignment file,
// the solution workbook it references, and a directory for student
// submissions.
type gradingFixture struct {
	dir            string
	assignmentPath string
	solutionPath   string
	submissionsDir string
}

// newGradingFixture builds the on-disk assignment the grading
// integration tests share. The Quiz region grades B2:B4 explicitly; the
// Essay region derives its cells from the bordered answer cells of the
// solution sheet, including a bordered blank that must not be counted.
// Five cells are gradable in total.
func newGradingFixture(t *testing.T) *gradingFixture {
	t.Helper()

	dir := t.TempDir()

	solutionPath := filepath.Join(dir, "solution.xlsx")
	writeWorkbook(t, solutionPath, func(f *excelize.File) {
		seedSolutionWorkbook(t, f)
	})

	assignment := `assignment: Integration HW
solution: solution.xlsx
tolerance: 0.01
regions:
  - name: Quiz
    sheet: Quiz
    ranges:
      - B2:B4
  - name: Essay
    sheet: Essay
    borderMarked: true
`
	assignmentPath := filepath.Join(dir, "assignment.yml")
	if err := os.WriteFile(assignmentPath, []byte(assignment), 0600); err != nil {
		t.Fatalf("failed to write assignment file: %v", err)
	}

	submissionsDir := filepath.Join(dir, "submissions")
	if err := os.Mkdir(submissionsDir, 0750); err != nil {
		t.Fatalf("failed to create submissions directory: %v", err)
	}

	return &gradingFixture{
		dir:            dir,
		assignmentPath: assignmentPath,
		solutionPath:   solutionPath,
		submissionsDir: submissionsDir,
	}
}

// seedSolutionWorkbook fills the reference workbook: Quiz answers in
// B2:B4, Essay answers in bordered D2 and D3, and a bordered blank D4.
func seedSolutionWorkbook(t *testing.T, f *excelize.File) {
	t.Helper()

	for _, sheet := range []string{"Quiz", "Essay"} {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatal(err)
		}
	}

	for cell, value := range map[string]any{"B2": 10, "B3": "Yes", "B4": 2.5} {
		if err := f.SetCellValue("Quiz", cell, value); err != nil {
			t.Fatal(err)
		}
	}
	for cell, value := range map[string]any{"D2": 7, "D3": "Done"} {
		if err := f.SetCellValue("Essay", cell, value); err != nil {
			t.Fatal(err)
		}
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, cell := range []string{"D2", "D3", "D4"} {
		if err := f.SetCellStyle("Essay", cell, cell, styleID); err != nil {
			t.Fatal(err)
		}
	}
}

// writeStudent writes a student submission holding the given Quiz and
// Essay answers into the submissions directory and returns its path.
func (fx *gradingFixture) writeStudent(t *testing.T, name string, quiz, essay map[string]any) string {
	t.Helper()

	path := filepath.Join(fx.submissionsDir, name)
	writeWorkbook(t, path, func(f *excelize.File) {
		for _, sheet := range []string{"Quiz", "Essay"} {
			if _, err := f.NewSheet(sheet); err != nil {
				t.Fatal(err)
			}
		}
		for cell, value := range quiz {
			if err := f.SetCellValue("Quiz", cell, value); err != nil {
				t.Fatal(err)
			}
		}
		for cell, value := range essay {
			if err := f.SetCellValue("Essay", cell, value); err != nil {
				t.Fatal(err)
			}
		}
	})
	return path
}

// TestIntegrationGradeSequential grades a single submission end to end:
// assignment loading, region grading, the feedback score record, and
// the history database row.
func TestIntegrationGradeSequential(t *testing.T) {
	// Note: Not using t.Parallel() because runGrade writes progress to os.Stdout

	ctx := context.Background()
	fx := newGradingFixture(t)

	alice := fx.writeStudent(t, "alice.xlsx",
		map[string]any{"B2": 10, "B3": "Yes", "B4": 2.5},
		map[string]any{"D2": 7, "D3": "Done"},
	)

	dbDir := filepath.Join(fx.dir, "db")
	feedbackPath := filepath.Join(fx.dir, "reports", "alice.json")

	cfg := config.NewConfig()
	cfg.AssignmentPath = fx.assignmentPath
	cfg.Targets = []string{alice}
	cfg.DBDir = dbDir
	cfg.FeedbackJSON = true
	cfg.ReportFile = feedbackPath

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Log("Grading one submission...")
	if err := runGrade(ctx, cfg, logger); err != nil {
		t.Fatalf("runGrade() error = %v", err)
	}

	// A perfect submission scores 1.0 over the five gradable cells.
	data, err := os.ReadFile(feedbackPath)
	if err != nil {
		t.Fatalf("failed to read feedback record: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("failed to parse feedback record: %v", err)
	}
	if score, ok := record["fractionalScore"].(float64); !ok || score != 1.0 {
		t.Errorf("expected fractionalScore 1.0, got %v", record["fractionalScore"])
	}
	feedback, _ := record["feedback"].(string)
	if !strings.Contains(feedback, "5/5") {
		t.Errorf("expected feedback to mention 5/5 correct, got %q", feedback)
	}
	if !strings.Contains(feedback, "Excellent work!") {
		t.Errorf("expected top-tier remark in feedback, got %q", feedback)
	}

	// The attempt was recorded in the history database.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to open database after grading: %v", err)
	}
	defer db.Close()

	attempts, err := db.ListReports(ctx, "alice.xlsx")
	if err != nil {
		t.Fatalf("failed to list graded attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 graded attempt, got %d", len(attempts))
	}
	if attempts[0].Score != 1.0 {
		t.Errorf("expected stored score 1.0, got %f", attempts[0].Score)
	}
	if attempts[0].Matches != 5 || attempts[0].TotalCells != 5 {
		t.Errorf("expected 5/5 cells, got %d/%d", attempts[0].Matches, attempts[0].TotalCells)
	}
	if attempts[0].Assignment != "Integration HW" {
		t.Errorf("expected assignment %q, got %q", "Integration HW", attempts[0].Assignment)
	}
	if attempts[0].Digest == "" {
		t.Error("expected a content digest on the stored attempt")
	}

	t.Logf("Grading completed. Stored attempt id=%d score=%.2f", attempts[0].ID, attempts[0].Score)
}

// TestIntegrationGradeBatch grades a directory of submissions
// concurrently and checks the per-student feedback files, the summary
// files, and the stored scores.
func TestIntegrationGradeBatch(t *testing.T) {
	// Note: Not using t.Parallel() because runGrade writes progress to os.Stdout

	ctx := context.Background()
	fx := newGradingFixture(t)

	fx.writeStudent(t, "alice.xlsx",
		map[string]any{"B2": 10, "B3": "Yes", "B4": 2.5},
		map[string]any{"D2": 7, "D3": "Done"},
	)
	fx.writeStudent(t, "bob.xlsx",
		map[string]any{"B2": 10, "B3": "No", "B4": 99},
		map[string]any{"D2": 8, "D3": "Done"},
	)
	fx.writeStudent(t, "carol.xlsx",
		map[string]any{"B2": 10, "B3": "Yes", "B4": 2.5},
		map[string]any{"D2": 7, "D3": "Wrong"},
	)
	fx.writeStudent(t, "dave.xlsx",
		map[string]any{"B2": 1, "B3": "No", "B4": 0},
		map[string]any{"D2": 1, "D3": "Nope"},
	)

	dbDir := filepath.Join(fx.dir, "db")
	resultsDir := filepath.Join(fx.dir, "results")

	cfg := config.NewConfig()
	cfg.AssignmentPath = fx.assignmentPath
	cfg.Targets = []string{fx.submissionsDir}
	cfg.BatchSize = 2
	cfg.DBDir = dbDir
	cfg.ResultsDir = resultsDir

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Log("Grading four submissions in batch...")
	if err := runGrade(ctx, cfg, logger); err != nil {
		t.Fatalf("runGrade() error = %v", err)
	}

	// Every student got a feedback file.
	aliceFeedback, err := os.ReadFile(filepath.Join(resultsDir, "alice_feedback.txt"))
	if err != nil {
		t.Fatalf("failed to read alice's feedback file: %v", err)
	}
	if !strings.Contains(string(aliceFeedback), "Excellent work!") {
		t.Errorf("expected top-tier remark for alice, got %q", string(aliceFeedback))
	}
	bobFeedback, err := os.ReadFile(filepath.Join(resultsDir, "bob_feedback.txt"))
	if err != nil {
		t.Fatalf("failed to read bob's feedback file: %v", err)
	}
	if !strings.Contains(string(bobFeedback), "2/5") {
		t.Errorf("expected bob's feedback to mention 2/5 correct, got %q", string(bobFeedback))
	}

	// The run summary was written as CSV and XLSX.
	csvFiles, err := filepath.Glob(filepath.Join(resultsDir, "grading_summary_*.csv"))
	if err != nil || len(csvFiles) != 1 {
		t.Fatalf("expected one summary CSV, got %v (err %v)", csvFiles, err)
	}
	csvData, err := os.ReadFile(csvFiles[0])
	if err != nil {
		t.Fatalf("failed to read summary CSV: %v", err)
	}
	for _, name := range []string{"alice.xlsx", "bob.xlsx", "carol.xlsx", "dave.xlsx"} {
		if !strings.Contains(string(csvData), name) {
			t.Errorf("summary CSV missing %s", name)
		}
	}
	xlsxFiles, err := filepath.Glob(filepath.Join(resultsDir, "grading_summary_*.xlsx"))
	if err != nil || len(xlsxFiles) != 1 {
		t.Fatalf("expected one summary XLSX, got %v (err %v)", xlsxFiles, err)
	}

	// Stored scores match each student's work.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to open database after grading: %v", err)
	}
	defer db.Close()

	wantScores := map[string]float64{
		"alice.xlsx": 1.0,
		"bob.xlsx":   0.4,
		"carol.xlsx": 0.8,
		"dave.xlsx":  0.0,
	}
	for submission, want := range wantScores {
		attempts, err := db.ListReports(ctx, submission)
		if err != nil {
			t.Fatalf("failed to list attempts for %s: %v", submission, err)
		}
		if len(attempts) != 1 {
			t.Fatalf("expected 1 attempt for %s, got %d", submission, len(attempts))
		}
		if attempts[0].Score != want {
			t.Errorf("%s: expected score %.2f, got %.2f", submission, want, attempts[0].Score)
		}
	}

	t.Log("Batch grading completed successfully")
}

// TestIntegrationGradeThenDiff grades a submission, grades a corrected
// resubmission, and diffs the two attempts out of the history database.
func TestIntegrationGradeThenDiff(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	ctx := context.Background()
	fx := newGradingFixture(t)

	bob := fx.writeStudent(t, "bob.xlsx",
		map[string]any{"B2": 10, "B3": "No", "B4": 99},
		map[string]any{"D2": 8, "D3": "Done"},
	)

	dbDir := filepath.Join(fx.dir, "db")

	cfg := config.NewConfig()
	cfg.AssignmentPath = fx.assignmentPath
	cfg.Targets = []string{bob}
	cfg.DBDir = dbDir

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Log("Grading first attempt...")
	if err := runGrade(ctx, cfg, logger); err != nil {
		t.Fatalf("first runGrade() error = %v", err)
	}

	// The corrected resubmission replaces the workbook at the same path.
	fx.writeStudent(t, "bob.xlsx",
		map[string]any{"B2": 10, "B3": "Yes", "B4": 2.5},
		map[string]any{"D2": 7, "D3": "Done"},
	)

	t.Log("Grading second attempt...")
	if err := runGrade(ctx, cfg, logger); err != nil {
		t.Fatalf("second runGrade() error = %v", err)
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	attempts, err := db.ListReports(ctx, "bob.xlsx")
	if err != nil {
		t.Fatalf("failed to list graded attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 graded attempts, got %d", len(attempts))
	}

	// Capture output
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = runAttemptDiff(ctx, db, "bob.xlsx", 0, "", false)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("runAttemptDiff() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	expectedStrings := []string{
		"Grading Diff: bob.xlsx",
		"IMPROVED (+0.60)",
		"Improved Regions (2):",
		"[+] Quiz: 1/3 -> 3/3",
		"[+] Essay: 1/2 -> 2/2",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("diff output missing %q, got:\n%s", expected, output)
		}
	}

	t.Log("Diff completed successfully")
}

// TestIntegrationExtractThenGrade extracts a solution workbook from an
// instructor master and grades a submission against it.
func TestIntegrationExtractThenGrade(t *testing.T) {
	// Note: Not using t.Parallel() because extract and grade write to os.Stdout

	ctx := context.Background()
	fx := newGradingFixture(t)

	// The master carries the solution sheets plus instructor material
	// that must not leak into the extracted file.
	masterPath := filepath.Join(fx.dir, "master.xlsx")
	writeWorkbook(t, masterPath, func(f *excelize.File) {
		seedSolutionWorkbook(t, f)
		if _, err := f.NewSheet("Notes"); err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue("Notes", "A1", "grading rubric draft"); err != nil {
			t.Fatal(err)
		}
	})

	extractedPath := filepath.Join(fx.dir, "extracted.xlsx")

	t.Log("Extracting solution sheets from master...")
	cmd := NewExtractCmd()
	cmd.SetArgs([]string{"--sheets", "Quiz,Essay", "--output", extractedPath, masterPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("extract command error = %v", err)
	}

	extracted, err := excelize.OpenFile(extractedPath)
	if err != nil {
		t.Fatalf("failed to open extracted workbook: %v", err)
	}
	defer extracted.Close()
	if sheets := extracted.GetSheetList(); len(sheets) != 2 || sheets[0] != "Quiz" || sheets[1] != "Essay" {
		t.Fatalf("expected extracted sheets [Quiz Essay], got %v", sheets)
	}

	alice := fx.writeStudent(t, "alice.xlsx",
		map[string]any{"B2": 10, "B3": "Yes", "B4": 2.5},
		map[string]any{"D2": 7, "D3": "Done"},
	)

	feedbackPath := filepath.Join(fx.dir, "alice.json")

	cfg := config.NewConfig()
	cfg.AssignmentPath = fx.assignmentPath
	cfg.SolutionPath = extractedPath // overrides the assignment's solution
	cfg.Targets = []string{alice}
	cfg.SaveToDB = false
	cfg.FeedbackJSON = true
	cfg.ReportFile = feedbackPath

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Log("Grading against the extracted solution...")
	if err := runGrade(ctx, cfg, logger); err != nil {
		t.Fatalf("runGrade() error = %v", err)
	}

	data, err := os.ReadFile(feedbackPath)
	if err != nil {
		t.Fatalf("failed to read feedback record: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("failed to parse feedback record: %v", err)
	}
	feedback, _ := record["feedback"].(string)
	// All five cells grade against the extracted file, which means the
	// border marks survived the extraction.
	if !strings.Contains(feedback, "5/5") {
		t.Errorf("expected feedback to mention 5/5 correct, got %q", feedback)
	}

	t.Log("Extract and grade round trip completed")
}
