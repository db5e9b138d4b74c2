package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the sheetgrade CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheetgrade",
		Short: "Grade spreadsheet submissions against a solution workbook",
		Long: `Sheetgrade grades Excel assignment submissions by comparing answer
cells against a reference solution workbook.

The cells to grade are defined per assignment in a sheetgrade.yaml
file: explicit cell ranges, individual cells, or every cell the
solution workbook marks with a border. Numeric answers match within a
small tolerance; text answers must match exactly after trimming
whitespace. Only cells holding a value in the solution count toward
the score.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	cmd.AddCommand(NewGradeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
