package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheetgrade/sheetgrade/internal/config"
	"github.com/sheetgrade/sheetgrade/internal/workbook"
)

// defaultSolutionFile is where extracted solution sheets land when
// neither the --output flag nor the assignment file names a path.
const defaultSolutionFile = "solution.xlsx"

// NewExtractCmd creates the extract command.
// This command builds a standalone solution workbook from an
// instructor's master workbook.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [master-workbook]",
		Short: "Extract solution sheets from a master workbook",
		Long: `Extract copies the solution sheets out of an instructor's master
workbook into a standalone solution file.

Only cell values and border marks survive the copy. Formulas, fonts,
and fills are left behind, so the extracted file can be distributed
alongside grading infrastructure without revealing how answers were
computed. Border marks are kept because borderMarked regions derive
their graded cells from them.

Which sheets to extract is taken from --sheets, or from the assignment
file's regions when the flag is omitted.

Examples:
  # Extract the sheets the assignment grades
  sheetgrade extract master.xlsx

  # Extract specific sheets to a specific file
  sheetgrade extract --sheets Classical,U-Net -o hw3_solution.xlsx master.xlsx

  # Overwrite an existing solution file
  sheetgrade extract -f master.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCmd,
	}

	cmd.Flags().StringP("assignment", "a", "",
		"Assignment file naming the sheets to extract (default: sheetgrade.yaml in current or XDG config directory)")
	cmd.Flags().StringP("output", "o", "",
		"Output path of the solution workbook (default: the assignment's solution path, or solution.xlsx)")
	cmd.Flags().StringSlice("sheets", nil,
		"Comma-separated sheet names to extract (default: the assignment's solution sheets)")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite the output file if it already exists")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	masterPath := args[0]

	assignmentPath, err := cmd.Flags().GetString("assignment")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	sheets, err := cmd.Flags().GetStringSlice("sheets")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// The assignment file fills in whatever the flags left open: the
	// sheet list comes from its regions and the output path from its
	// solution entry. With both flags given, no assignment is needed.
	if len(sheets) == 0 || output == "" {
		assignment, err := loadExtractAssignment(assignmentPath)
		if err != nil {
			return err
		}

		if len(sheets) == 0 {
			if assignment == nil {
				return errors.New("no sheets specified: pass --sheets or provide an assignment file")
			}
			sheets = assignment.SolutionSheets()
		}
		if output == "" {
			output = defaultSolutionFile
			if assignment != nil && assignment.Solution != "" {
				output = assignment.Solution
			}
		}
	}

	// Refuse to clobber an existing solution file unless forced
	if !force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("output file already exists: %s (use -f to overwrite)", output)
		}
	}

	result, err := workbook.ExtractSheets(masterPath, output, sheets)
	if err != nil {
		return fmt.Errorf("failed to extract sheets: %w", err)
	}

	fmt.Printf("Extracted %d sheet(s) (%d cells) into %s\n", len(result.Sheets), result.Cells, output)
	for _, sheet := range result.Sheets {
		fmt.Printf("  • %s\n", sheet)
	}
	fmt.Println("\nUse 'sheetgrade grade' to grade submissions against it.")

	return nil
}

// loadExtractAssignment loads the assignment file for extraction
// defaults. A missing file is only an error when the path was given
// explicitly; otherwise the caller falls back to flag values.
func loadExtractAssignment(assignmentPath string) (*config.Assignment, error) {
	found := config.FindAssignmentFile(assignmentPath)
	if found == "" {
		if assignmentPath != "" {
			return nil, fmt.Errorf("assignment file not found: %s", assignmentPath)
		}
		return nil, nil
	}

	assignment, err := config.LoadAssignmentFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment file: %w", err)
	}
	return assignment, nil
}
