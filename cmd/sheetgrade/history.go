package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheetgrade/sheetgrade/internal/config"
	"github.com/sheetgrade/sheetgrade/internal/database"
	"github.com/sheetgrade/sheetgrade/internal/model"
)

// Constants for score direction between two grading attempts.
const (
	scoreDirectionImproved  = "improved"
	scoreDirectionDeclined  = "declined"
	scoreDirectionUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command inspects grading results stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [submission]",
		Short: "Show stored grading attempts for a submission",
		Long: `History lists the grading attempts recorded for a submission and can
diff two attempts to show how a resubmission moved the score.

Every grading run stores its report in the history database (unless
--no-save was given), keyed by the submission's file name. The diff
shows the score change and which regions improved or regressed.

Examples:
  # List grading attempts for a submission
  sheetgrade history alice.xlsx

  # Compare the latest two attempts
  sheetgrade history --diff alice.xlsx

  # Compare the latest attempt with a specific earlier one by ID
  sheetgrade history --with-id 5 alice.xlsx

  # Compare with the first attempt since a specific date
  sheetgrade history --since "2026-08-01" alice.xlsx

  # Output in JSON format
  sheetgrade history --json alice.xlsx

  # List all graded submissions in the database
  sheetgrade history --list-submissions`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list-submissions", "L", false,
		"List all graded submissions in the database")

	// Diff flags
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the latest two grading attempts")
	cmd.Flags().Int64P("with-id", "i", 0,
		"Diff the latest attempt against a specific attempt by ID (see the attempt list for IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Diff the latest attempt against the first attempt after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-submissions flag first (requires database but no argument)
	listSubs, err := cmd.Flags().GetBool("list-submissions")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database (unless --list-submissions)
	var submission string
	if !listSubs {
		if len(args) == 0 {
			return errors.New("submission is required (use --list-submissions to see graded submissions)")
		}

		// Reports are stored under the submission's base file name
		submission = filepath.Base(args[0])
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}
	// Selecting a diff target implies diffing
	if withID > 0 || sinceDate != "" {
		diff = true
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listSubs {
		return listGradedSubmissions(ctx, db)
	}

	if diff {
		return runAttemptDiff(ctx, db, submission, withID, sinceDate, jsonOutput)
	}

	return listGradingHistory(ctx, db, submission, jsonOutput)
}

// listGradedSubmissions lists all submissions that have grading records
// in the database.
func listGradedSubmissions(ctx context.Context, db *database.ResultDB) error {
	submissions, err := db.ListSubmissions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	if len(submissions) == 0 {
		fmt.Println("No graded submissions found in the database.")
		fmt.Println("\nUse 'sheetgrade grade <workbook>' to grade a submission.")
		return nil
	}

	fmt.Printf("Graded submissions (%d):\n\n", len(submissions))
	for _, submission := range submissions {
		fmt.Printf("  • %s\n", submission)
	}
	fmt.Println("\nUse 'sheetgrade history <submission>' to see grading attempts for a submission.")

	return nil
}

// listGradingHistory lists all grading attempts for a specific submission.
func listGradingHistory(ctx context.Context, db *database.ResultDB, submission string, jsonOutput bool) error {
	attempts, err := db.ListReports(ctx, submission)
	if err != nil {
		return fmt.Errorf("failed to get grading history: %w", err)
	}

	if len(attempts) == 0 {
		fmt.Printf("No grading history found for %s\n", submission)
		fmt.Println("\nUse 'sheetgrade grade' to grade this submission.")
		return nil
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(attempts)
	}

	fmt.Printf("Grading history for %s (%d attempts):\n\n", submission, len(attempts))
	fmt.Printf("  %-6s  %-20s  %-6s  %s\n", "ID", "Date", "Score", "Correct")
	fmt.Println("  " + strings.Repeat("-", 48))

	for _, meta := range attempts {
		fmt.Printf("  %-6d  %-20s  %-6.2f  %d/%d\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Score,
			meta.Matches,
			meta.TotalCells,
		)
	}

	fmt.Println("\nUse 'sheetgrade history --diff <submission>' to compare the latest two attempts.")
	fmt.Println("Use 'sheetgrade history --with-id <id> <submission>' to compare with a specific attempt.")

	return nil
}

// runAttemptDiff performs the comparison between two grading attempts.
func runAttemptDiff(ctx context.Context, db *database.ResultDB, submission string, withID int64, sinceDate string, jsonOutput bool) error {
	// Get the attempt metadata, newest first
	attempts, err := db.ListReports(ctx, submission)
	if err != nil {
		return fmt.Errorf("failed to get grading history: %w", err)
	}

	if len(attempts) == 0 {
		return fmt.Errorf("no grading history found for %s", submission)
	}

	if len(attempts) < 2 && withID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 graded attempts are required for a diff (found %d)", len(attempts))
	}

	// Latest attempt is always the current one
	current, err := db.GetReport(ctx, attempts[0].ID)
	if err != nil {
		return fmt.Errorf("failed to get attempt with ID %d: %w", attempts[0].ID, err)
	}
	if current == nil {
		return fmt.Errorf("attempt with ID %d not found", attempts[0].ID)
	}

	var previous *model.GradeReport

	switch {
	case withID > 0:
		// Diff against the attempt with the specified ID
		previous, err = db.GetReport(ctx, withID)
		if err != nil {
			return fmt.Errorf("failed to get attempt with ID %d: %w", withID, err)
		}
		if previous == nil {
			return fmt.Errorf("attempt with ID %d not found", withID)
		}
		// Validate that the attempt belongs to the same submission
		if previous.Submission != submission {
			return fmt.Errorf("attempt ID %d belongs to %s, not %s", withID, previous.Submission, submission)
		}
	case sinceDate != "":
		// Parse the date and find the first (oldest) attempt at or after it
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Attempts are sorted newest first, so iterate in reverse to find
		// the oldest attempt at or after the date
		var sinceID int64
		for i := len(attempts) - 1; i >= 0; i-- {
			meta := attempts[i]
			if meta.Timestamp.After(parsedDate) || meta.Timestamp.Equal(parsedDate) {
				sinceID = meta.ID
				break
			}
		}
		if sinceID == 0 {
			return fmt.Errorf("no graded attempts found since %s", sinceDate)
		}
		// If the only attempt since the date is the current one, there is
		// nothing to diff against
		if sinceID == attempts[0].ID {
			return fmt.Errorf("only one attempt found since %s; at least 2 attempts are required for a diff", sinceDate)
		}

		previous, err = db.GetReport(ctx, sinceID)
		if err != nil {
			return fmt.Errorf("failed to get attempt with ID %d: %w", sinceID, err)
		}
		if previous == nil {
			return fmt.Errorf("attempt with ID %d not found", sinceID)
		}
	default:
		// Default: diff against the previous attempt
		previous, err = db.GetReport(ctx, attempts[1].ID)
		if err != nil {
			return fmt.Errorf("failed to get attempt with ID %d: %w", attempts[1].ID, err)
		}
		if previous == nil {
			return fmt.Errorf("attempt with ID %d not found", attempts[1].ID)
		}
	}

	diff := diffAttempts(previous, current)

	if jsonOutput {
		return outputDiffJSON(diff)
	}
	return outputDiffText(diff)
}

// AttemptDiff holds the result of comparing two grading attempts of the
// same submission.
type AttemptDiff struct {
	// Submission is the graded workbook's file name.
	Submission string `json:"submission"`

	// Assignment is the assignment both attempts were graded against.
	Assignment string `json:"assignment"`

	// Previous contains metadata about the earlier attempt.
	Previous AttemptMetadata `json:"previous_attempt"`

	// Current contains metadata about the later attempt.
	Current AttemptMetadata `json:"current_attempt"`

	// ScoreDelta is the fractional score change, current minus previous.
	ScoreDelta float64 `json:"score_delta"`

	// Direction is "improved", "declined", or "unchanged".
	Direction string `json:"direction"`

	// Improved lists regions whose match percentage went up.
	Improved []RegionDelta `json:"improved_regions,omitempty"`

	// Regressed lists regions whose match percentage went down.
	Regressed []RegionDelta `json:"regressed_regions,omitempty"`

	// UnchangedCount is the number of regions whose percentage did not move.
	UnchangedCount int `json:"unchanged_count"`
}

// AttemptMetadata contains metadata about one grading attempt for diff
// display.
type AttemptMetadata struct {
	// DateGraded is when the attempt was graded.
	DateGraded time.Time `json:"date_graded"`

	// Score is the fractional score in [0, 1].
	Score float64 `json:"score"`

	// Matches is the number of correct cells.
	Matches int `json:"matches"`

	// TotalCells is the number of graded cells.
	TotalCells int `json:"total_cells"`
}

// RegionDelta describes how one region's result moved between attempts.
type RegionDelta struct {
	// Region is the region name from the assignment.
	Region string `json:"region"`

	// PreviousCorrect and PreviousTotal are the earlier attempt's tallies.
	PreviousCorrect int `json:"previous_correct"`
	PreviousTotal   int `json:"previous_total"`

	// CurrentCorrect and CurrentTotal are the later attempt's tallies.
	CurrentCorrect int `json:"current_correct"`
	CurrentTotal   int `json:"current_total"`
}

// diffAttempts compares two grading attempts and generates a diff.
func diffAttempts(previous, current *model.GradeReport) *AttemptDiff {
	result := &AttemptDiff{
		Submission: current.Submission,
		Assignment: current.Assignment,
		Previous: AttemptMetadata{
			DateGraded: previous.DateGraded,
			Score:      previous.Score,
			Matches:    previous.Matches,
			TotalCells: previous.TotalCells,
		},
		Current: AttemptMetadata{
			DateGraded: current.DateGraded,
			Score:      current.Score,
			Matches:    current.Matches,
			TotalCells: current.TotalCells,
		},
	}

	// Scores are stored rounded to two decimals; keep the delta as clean
	result.ScoreDelta = math.Round((current.Score-previous.Score)*100) / 100

	switch {
	case result.ScoreDelta > 0:
		result.Direction = scoreDirectionImproved
	case result.ScoreDelta < 0:
		result.Direction = scoreDirectionDeclined
	default:
		result.Direction = scoreDirectionUnchanged
	}

	// Index the previous attempt's regions by name. A region absent from
	// the earlier attempt compares against a zero outcome, so a newly
	// graded region that scored counts as improved.
	previousRegions := make(map[string]model.RegionOutcome)
	for _, outcome := range previous.Regions {
		previousRegions[outcome.Region] = outcome
	}

	for _, outcome := range current.Regions {
		prev := previousRegions[outcome.Region]
		delta := RegionDelta{
			Region:          outcome.Region,
			PreviousCorrect: prev.Correct,
			PreviousTotal:   prev.Total,
			CurrentCorrect:  outcome.Correct,
			CurrentTotal:    outcome.Total,
		}

		switch {
		case outcome.Percentage() > prev.Percentage():
			result.Improved = append(result.Improved, delta)
		case outcome.Percentage() < prev.Percentage():
			result.Regressed = append(result.Regressed, delta)
		default:
			result.UnchangedCount++
		}
	}

	return result
}

// outputDiffJSON outputs the attempt diff in JSON format.
func outputDiffJSON(diff *AttemptDiff) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(diff)
}

// outputDiffText outputs the attempt diff in human-readable text format.
func outputDiffText(diff *AttemptDiff) error {
	fmt.Printf("Grading Diff: %s\n", diff.Submission)
	fmt.Println(strings.Repeat("=", 60))

	// Score change summary
	fmt.Printf("\nScore: %s\n", formatScoreDirection(diff.Direction, diff.ScoreDelta))

	// Attempt dates and totals
	fmt.Printf("\nPrevious attempt: %s  score %.2f (%d/%d correct)\n",
		diff.Previous.DateGraded.Format("2006-01-02 15:04:05"),
		diff.Previous.Score, diff.Previous.Matches, diff.Previous.TotalCells)
	fmt.Printf("Current attempt:  %s  score %.2f (%d/%d correct)\n",
		diff.Current.DateGraded.Format("2006-01-02 15:04:05"),
		diff.Current.Score, diff.Current.Matches, diff.Current.TotalCells)

	// Improved regions
	if len(diff.Improved) > 0 {
		fmt.Printf("\nImproved Regions (%d):\n", len(diff.Improved))
		for _, delta := range diff.Improved {
			fmt.Printf("  [+] %s: %d/%d -> %d/%d\n", delta.Region,
				delta.PreviousCorrect, delta.PreviousTotal,
				delta.CurrentCorrect, delta.CurrentTotal)
		}
	}

	// Regressed regions
	if len(diff.Regressed) > 0 {
		fmt.Printf("\nRegressed Regions (%d):\n", len(diff.Regressed))
		for _, delta := range diff.Regressed {
			fmt.Printf("  [-] %s: %d/%d -> %d/%d\n", delta.Region,
				delta.PreviousCorrect, delta.PreviousTotal,
				delta.CurrentCorrect, delta.CurrentTotal)
		}
	}

	// Unchanged count
	if diff.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d regions\n", diff.UnchangedCount)
	}

	return nil
}

// formatScoreDirection formats the score change direction for display.
func formatScoreDirection(direction string, delta float64) string {
	switch direction {
	case scoreDirectionImproved:
		return fmt.Sprintf("IMPROVED (%s)", formatScoreDelta(delta))
	case scoreDirectionDeclined:
		return fmt.Sprintf("DECLINED (%s)", formatScoreDelta(delta))
	default:
		return "UNCHANGED"
	}
}

// formatScoreDelta formats a fractional score delta with sign for display.
func formatScoreDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.2f", delta)
	}
	return fmt.Sprintf("%.2f", delta)
}
