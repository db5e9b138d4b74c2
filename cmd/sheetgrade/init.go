package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sheetgrade/sheetgrade/internal/config"
)

//go:embed templates/sheetgrade.yaml
var assignmentTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new assignment definition file",
		Long: `Initialize creates a new sheetgrade.yaml assignment file in the
current directory.

The generated file includes:
- The assignment name, solution path, and tolerance settings
- Commented examples for every region selection strategy
- Documentation for all available options

Examples:
  # Create sheetgrade.yaml in current directory
  sheetgrade init

  # Create an assignment file at a specific path
  sheetgrade init -o hw3.yaml

  # Force overwrite existing file
  sheetgrade init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultAssignmentFile,
		"Output file path for the assignment definition")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing assignment file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("assignment file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := assignmentTemplate.ReadFile("templates/sheetgrade.yaml")
	if err != nil {
		return fmt.Errorf("failed to read assignment template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write assignment file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write assignment file: %w", err)
	}

	fmt.Printf("Created assignment file: %s\n", outputPath)
	fmt.Println("\nEdit this file to describe your assignment:")
	fmt.Println("  - The reference solution workbook path")
	fmt.Println("  - The regions to grade (ranges, cells, or borderMarked)")
	fmt.Println("  - The numeric comparison tolerance")

	return nil
}
