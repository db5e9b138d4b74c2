package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sheetgrade/sheetgrade/internal/config"
	"github.com/sheetgrade/sheetgrade/internal/grader"
	"github.com/sheetgrade/sheetgrade/internal/log"
	"github.com/sheetgrade/sheetgrade/internal/model"
)

// PipelineFactory creates a fresh pipeline and grader for one
// submission. The batch processor closes the grader when the
// submission's pipeline has finished.
//
// We use a factory to ensure each submission gets its own pipeline and
// grading session: a Grader holds open workbooks and is not safe for
// concurrent use.
type PipelineFactory func(submission string) (*Pipeline, *grader.Grader)

// BatchProcessor handles concurrent grading of multiple submissions.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-submission execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// assignment names the assignment every report is graded against.
	assignment string

	// factory creates a new pipeline and grader for each submission.
	factory PipelineFactory

	// concurrency is the maximum number of submissions graded at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed grade reports.
	// Access is synchronized via mutex.
	results []*model.GradeReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent gradings.
// Default is config.DefaultBatchSize if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor for the named
// assignment.
func NewBatchProcessor(assignment string, factory PipelineFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		assignment:  assignment,
		factory:     factory,
		concurrency: config.DefaultBatchSize,
		results:     make([]*model.GradeReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch grades multiple submissions concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each submission gets its own goroutine, but only 'concurrency'
// goroutines run simultaneously.
//
// Returns all reports in submission order, including reports for
// submissions whose grading failed. The error return indicates whether
// the batch was canceled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, submissions []string) ([]*model.GradeReport, error) {
	bp.logger.Info("starting batch grading",
		"total_submissions", len(submissions),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.GradeReport, len(submissions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, submission := range submissions {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// Stamp this goroutine's log records with the submission
			sctx := log.WithSubmission(ctx, filepath.Base(submission))

			bp.logger.InfoContext(sctx, "grading submission",
				"index", i+1,
				"total", len(submissions),
			)

			report := bp.grade(sctx, submission)

			// Store result regardless of error
			// The report contains error information if grading failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if report.Failed() {
				bp.logger.WarnContext(sctx, "grading failed",
					"error", report.ErrorMessage,
				)
				// Don't return the error to errgroup - we want the
				// other submissions graded. The error is in the report.
				return nil
			}

			bp.logger.InfoContext(sctx, "grading completed",
				"score", report.Score,
			)

			return nil
		})
	}

	// Wait for all gradings to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch grading complete",
		"total_submissions", len(submissions),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback grades multiple submissions and calls a
// callback for each completed grading. This is useful for streaming
// results.
//
// The callback receives the report and the index of the submission in
// the original slice. The callback is called from the goroutine that
// graded the submission, so it should be thread-safe if it accesses
// shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	submissions []string,
	callback func(report *model.GradeReport, index int),
) error {
	bp.logger.Info("starting batch grading with callback",
		"total_submissions", len(submissions),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, submission := range submissions {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			sctx := log.WithSubmission(ctx, filepath.Base(submission))
			report := bp.grade(sctx, submission)

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}

// grade runs one submission through a fresh pipeline and returns its
// finalized report.
func (bp *BatchProcessor) grade(ctx context.Context, submission string) *model.GradeReport {
	report := model.NewGradeReport(submission, bp.assignment)

	pipeline, g := bp.factory(submission)
	_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report
	if err := g.Close(); err != nil {
		bp.logger.WarnContext(ctx, "closing workbooks failed", "error", err)
	}

	report.Finalize()
	return report
}
