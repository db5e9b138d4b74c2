// Package log provides logging for grading runs, built on top of the
// standard slog package.
//
// This package extends slog to provide:
//   - Automatic stamping of each record with the submission being graded
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Submission Context
//
// Batch runs grade many submissions concurrently, and a warning such as
// "skipping unit" is useless without knowing whose workbook produced
// it. Instead of threading the file name through every call site, the
// submission is attached to the context once and the SubmissionHandler
// stamps it onto every record logged under that context.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	slog.SetDefault(logger)
//
//	ctx = log.WithSubmission(ctx, "alice.xlsx")
//	logger.WarnContext(ctx, "skipping unit",
//	    "unit", "K4:K6",
//	)
//	// time=... level=WARN msg="skipping unit" unit=K4:K6 submission=alice.xlsx
package log
