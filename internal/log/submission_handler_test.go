package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSubmissionHandler_StampsContextSubmission tests that records pick
// up the submission carried by the context.
func TestSubmissionHandler_StampsContextSubmission(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	ctx := WithSubmission(context.Background(), "alice.xlsx")
	logger.InfoContext(ctx, "grading region", "region", "Classical")

	output := buf.String()
	if !strings.Contains(output, "submission=alice.xlsx") {
		t.Errorf("expected submission stamp in output, got: %s", output)
	}
	if !strings.Contains(output, "region=Classical") {
		t.Errorf("expected original attributes preserved, got: %s", output)
	}
}

// TestSubmissionHandler_NoContextValue tests that records without a
// submission in context are passed through untouched.
func TestSubmissionHandler_NoContextValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.InfoContext(context.Background(), "starting run")

	output := buf.String()
	if strings.Contains(output, SubmissionKey+"=") {
		t.Errorf("expected no submission stamp, got: %s", output)
	}
	if !strings.Contains(output, "starting run") {
		t.Errorf("expected message in output, got: %s", output)
	}
}

// TestSubmissionHandler_ExplicitAttributeWins tests that an explicit
// submission attribute is not overwritten or duplicated.
func TestSubmissionHandler_ExplicitAttributeWins(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	ctx := WithSubmission(context.Background(), "from-context.xlsx")
	logger.InfoContext(ctx, "grading", SubmissionKey, "explicit.xlsx")

	output := buf.String()
	if !strings.Contains(output, "submission=explicit.xlsx") {
		t.Errorf("expected explicit attribute in output, got: %s", output)
	}
	if strings.Contains(output, "from-context.xlsx") {
		t.Errorf("context value should not be stamped over explicit attribute, got: %s", output)
	}
}

// TestSubmissionHandler_LogLevels tests the verbose flag's level mapping.
func TestSubmissionHandler_LogLevels(t *testing.T) {
	t.Parallel()

	t.Run("default level suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)

		logger.Info("should not appear")
		logger.Warn("should appear")

		output := buf.String()
		if strings.Contains(output, "should not appear") {
			t.Errorf("info logged despite warn level: %s", output)
		}
		if !strings.Contains(output, "should appear") {
			t.Errorf("warning missing from output: %s", output)
		}
	})

	t.Run("verbose level includes debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)

		logger.Debug("debug detail")

		if !strings.Contains(buf.String(), "debug detail") {
			t.Errorf("debug missing in verbose mode: %s", buf.String())
		}
	})
}

// TestSubmissionHandler_WithAttrsAndGroups tests that the wrapper keeps
// working through WithAttrs and WithGroup chains.
func TestSubmissionHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true).With("assignment", "hw3").WithGroup("cells")

	ctx := WithSubmission(context.Background(), "bob.xlsx")
	logger.InfoContext(ctx, "graded", "correct", 4)

	output := buf.String()
	if !strings.Contains(output, "assignment=hw3") {
		t.Errorf("expected WithAttrs attribute, got: %s", output)
	}
	if !strings.Contains(output, "cells.correct=4") {
		t.Errorf("expected grouped attribute, got: %s", output)
	}
	if !strings.Contains(output, "bob.xlsx") {
		t.Errorf("expected submission stamp, got: %s", output)
	}
}

// TestNewJSONLogger tests JSON output with the submission stamp.
func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)

	ctx := WithSubmission(context.Background(), "carol.xlsx")
	logger.InfoContext(ctx, "graded")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if record[SubmissionKey] != "carol.xlsx" {
		t.Errorf("record[%q] = %v, want carol.xlsx", SubmissionKey, record[SubmissionKey])
	}
}

// TestSubmissionFromContext tests context round-tripping.
func TestSubmissionFromContext(t *testing.T) {
	t.Parallel()

	if got := SubmissionFromContext(context.Background()); got != "" {
		t.Errorf("SubmissionFromContext(empty) = %q, want empty", got)
	}

	ctx := WithSubmission(context.Background(), "dave.xlsx")
	if got := SubmissionFromContext(ctx); got != "dave.xlsx" {
		t.Errorf("SubmissionFromContext() = %q, want dave.xlsx", got)
	}
}

// TestNewSubmissionHandler_NilHandler tests the nil fallback.
func TestNewSubmissionHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewSubmissionHandler(nil)
	if h == nil {
		t.Fatal("NewSubmissionHandler(nil) returned nil")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("handler should report error level enabled")
	}
}
