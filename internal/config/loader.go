package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAssignmentFile is the default assignment definition file name.
const DefaultAssignmentFile = "sheetgrade.yaml"

// ErrAssignmentNotFound is returned when the assignment file does not exist.
var ErrAssignmentNotFound = errors.New("assignment file not found")

// LoadAssignmentFile loads and validates an assignment definition from a
// YAML file. A relative solution path in the file is resolved against the
// file's own directory, so an assignment directory can be moved as a unit.
func LoadAssignmentFile(path string) (*Assignment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided assignment path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	var a Assignment
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse assignment file %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("assignment file %s: %w", path, err)
	}

	if a.Solution != "" && !filepath.IsAbs(a.Solution) {
		a.Solution = filepath.Join(filepath.Dir(path), a.Solution)
	}

	return &a, nil
}

// FindAssignmentFile searches for the assignment file in the following order:
// 1. If assignmentPath is specified, use it directly
// 2. Look for sheetgrade.yaml in the current directory
// 3. Look for sheetgrade.yaml in the XDG config directory
//
// Returns the path to the assignment file if found, or empty string if not found.
func FindAssignmentFile(assignmentPath string) string {
	// If explicit path is provided, use it
	if assignmentPath != "" {
		if _, err := os.Stat(assignmentPath); err == nil {
			return assignmentPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdFile := filepath.Join(cwd, DefaultAssignmentFile)
		if _, err := os.Stat(cwdFile); err == nil {
			return cwdFile
		}
	}

	// Check XDG config directory
	xdgFile := filepath.Join(XDGConfigDir(), DefaultAssignmentFile)
	if _, err := os.Stat(xdgFile); err == nil {
		return xdgFile
	}

	return ""
}
