package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sheetgrade/sheetgrade/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultAssignmentFile {
			t.Errorf("expected default %q, got %q", config.DefaultAssignmentFile, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Run("creates assignment file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sheetgrade.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected assignment file to be created")
		}

		// Verify file contents
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		// Check for expected YAML keys
		if !strings.Contains(string(content), "assignment:") {
			t.Error("expected assignment file to contain 'assignment:'")
		}
		if !strings.Contains(string(content), "regions:") {
			t.Error("expected assignment file to contain 'regions:'")
		}
	})

	t.Run("generated file loads as a valid assignment", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sheetgrade.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		assignment, err := config.LoadAssignmentFile(outputPath)
		if err != nil {
			t.Fatalf("generated template does not load: %v", err)
		}
		if len(assignment.Regions) == 0 {
			t.Error("expected generated template to define at least one region")
		}
	})

	t.Run("fails if file exists without force", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sheetgrade.yaml")

		// Create existing file
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err == nil {
			t.Error("expected error when file exists")
		}
		if !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected 'already exists' error, got %v", err)
		}
	})

	t.Run("overwrites file with force flag", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sheetgrade.yaml")

		// Create existing file
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath, "-f"})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file was overwritten
		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if string(content) == "existing" {
			t.Error("expected file to be overwritten")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "sheetgrade.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify file exists
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected assignment file to be created in nested directory")
		}
	})

	t.Run("file has correct permissions", func(t *testing.T) {
		// Skip on Windows as it doesn't support Unix-style file permissions
		if runtime.GOOS == "windows" {
			t.Skip("skipping permission test on Windows")
		}

		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "sheetgrade.yaml")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})

		err := cmd.Execute()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}

		// Check file permissions (0600)
		perm := info.Mode().Perm()
		if perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}

// TestAssignmentTemplate tests the embedded assignment template.
func TestAssignmentTemplate(t *testing.T) {
	t.Parallel()

	content, err := assignmentTemplate.ReadFile("templates/sheetgrade.yaml")
	if err != nil {
		t.Fatalf("failed to read template: %v", err)
	}

	t.Run("template is not empty", func(t *testing.T) {
		t.Parallel()
		if len(content) == 0 {
			t.Error("expected non-empty template")
		}
	})

	t.Run("template contains assignment name", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(string(content), "assignment:") {
			t.Error("expected template to contain 'assignment:' entry")
		}
	})

	t.Run("template contains solution path", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(string(content), "solution:") {
			t.Error("expected template to contain 'solution:' entry")
		}
	})

	t.Run("template contains regions section", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(string(content), "regions:") {
			t.Error("expected template to contain 'regions:' section")
		}
	})

	t.Run("template shows every selection strategy", func(t *testing.T) {
		t.Parallel()
		str := string(content)
		for _, key := range []string{"ranges:", "cells:", "borderMarked:"} {
			if !strings.Contains(str, key) {
				t.Errorf("expected template to document %q", key)
			}
		}
	})

	t.Run("template contains documentation comments", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(string(content), "#") {
			t.Error("expected template to contain documentation comments")
		}
	})
}
