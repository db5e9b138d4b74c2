package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheetgrade/sheetgrade/internal/config"
	"github.com/sheetgrade/sheetgrade/internal/database"
	"github.com/sheetgrade/sheetgrade/internal/grader"
	"github.com/sheetgrade/sheetgrade/internal/log"
	"github.com/sheetgrade/sheetgrade/internal/model"
	"github.com/sheetgrade/sheetgrade/internal/pipeline"
	"github.com/sheetgrade/sheetgrade/internal/report"
	"github.com/sheetgrade/sheetgrade/internal/workbook"
)

// NewGradeCmd creates the grade command.
func NewGradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade [workbooks or directories]",
		Short: "Grade submission workbooks against the assignment solution",
		Long: `Grade compares student workbooks cell by cell against a reference
solution workbook and produces a fractional score with feedback.

The assignment file (sheetgrade.yaml) names the solution workbook and
the regions to grade. Each region selects cells by explicit ranges,
individual cells, or the border marks of the solution sheet. Numeric
answers match within the tolerance; text answers must match exactly
after trimming whitespace.

Examples:
  # Grade a single submission
  sheetgrade grade alice.xlsx

  # Grade every workbook in a directory
  sheetgrade grade submissions/

  # Grade with feedback files and a summary spreadsheet per run
  sheetgrade grade --results-dir results submissions/

  # Emit the machine-readable score record
  sheetgrade grade --feedback-json alice.xlsx

  # Use a specific assignment file and solution workbook
  sheetgrade grade -a hw3.yaml -s hw3_solution.xlsx alice.xlsx

Assignment file (sheetgrade.yaml) example:
  assignment: Final Project
  solution: solution.xlsx
  tolerance: 0.01
  regions:
    - name: Classical
      sheet: Classical
      ranges: ["K4:K6", "P4:P6"]
    - name: U-Net
      sheet: U-Net
      borderMarked: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runGradeCmd,
	}

	// Assignment flags
	cmd.Flags().StringP("assignment", "a", "",
		"Assignment file path (default: sheetgrade.yaml in current or XDG config directory)")
	cmd.Flags().StringP("solution", "s", "",
		"Solution workbook path (overrides the assignment file)")
	cmd.Flags().Float64P("tolerance", "t", 0,
		"Absolute numeric comparison tolerance (overrides the assignment file)")

	// Grading behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent grading workers for multi-file runs")
	cmd.Flags().Bool("raw", false,
		"Compare raw cell values instead of number-formatted ones")
	cmd.Flags().Bool("no-save", false,
		"Do not record results in the grading history database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output full JSON report (mutually exclusive with --markdown and --feedback-json)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --feedback-json)")
	cmd.Flags().BoolP("feedback-json", "f", false,
		"Output only the score and feedback record (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("results-dir", "r", "",
		"Write per-submission feedback files and run summaries into this directory")

	return cmd
}

// runGradeCmd executes the grade command.
func runGradeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildGradeConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runGrade(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildGradeConfig creates a Config from cobra command flags.
func buildGradeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.AssignmentPath, err = cmd.Flags().GetString("assignment")
	if err != nil {
		return nil, err
	}

	cfg.SolutionPath, err = cmd.Flags().GetString("solution")
	if err != nil {
		return nil, err
	}

	cfg.Tolerance, err = cmd.Flags().GetFloat64("tolerance")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.RawValues, err = cmd.Flags().GetBool("raw")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.FeedbackJSON, err = cmd.Flags().GetBool("feedback-json")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ResultsDir, err = cmd.Flags().GetString("results-dir")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Get positional arguments (submission workbooks or directories)
	cfg.Targets = args

	return cfg, nil
}

// runGrade executes the grading run.
func runGrade(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Locate and load the assignment definition.
	// If user explicitly specified an assignment path, error if not found.
	// Otherwise search the current directory and the XDG config directory.
	explicitPath := cfg.AssignmentPath != ""
	assignmentPath := config.FindAssignmentFile(cfg.AssignmentPath)
	if assignmentPath == "" {
		if explicitPath {
			return fmt.Errorf("assignment file not found: %s", cfg.AssignmentPath)
		}
		return fmt.Errorf("no assignment file found (create %s with %q or pass --assignment)",
			config.DefaultAssignmentFile, "sheetgrade init")
	}

	assignment, err := config.LoadAssignmentFile(assignmentPath)
	if err != nil {
		return fmt.Errorf("failed to load assignment file: %w", err)
	}

	// Resolve the solution workbook: the flag overrides the assignment.
	// Fail before opening any submission; a missing solution fails every
	// one of them the same way.
	solutionPath := cfg.SolutionPath
	if solutionPath == "" {
		solutionPath = assignment.Solution
	}
	if solutionPath == "" {
		return config.ErrNoSolution
	}
	if _, err := os.Stat(solutionPath); err != nil {
		return fmt.Errorf("solution workbook %s: %w", solutionPath, err)
	}

	// Resolve the tolerance: the flag overrides the assignment.
	tolerance := assignment.EffectiveTolerance()
	if cfg.Tolerance > 0 {
		tolerance = cfg.Tolerance
	}

	// Expand directory targets into the workbooks they contain.
	targets, err := expandTargets(cfg.Targets)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.New("no Excel workbooks found in the given paths")
	}
	cfg.Targets = targets

	logger.Info("starting grading",
		"assignment", assignment.Name,
		"submissions", len(cfg.Targets),
		"solution", solutionPath,
		"tolerance", tolerance,
		"saveToDB", cfg.SaveToDB,
	)

	if cfg.ResultsDir != "" {
		if err := os.MkdirAll(cfg.ResultsDir, 0750); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	// Open database connection if saving is enabled
	var db *database.ResultDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	factory := newPipelineFactory(assignment, solutionPath, tolerance, cfg, logger)

	// Use batch processor for parallel grading if multiple submissions
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchGrade(ctx, cfg, assignment, factory, db, logger)
	}

	// Single submission or sequential grading
	return runSequentialGrade(ctx, cfg, assignment, factory, db, logger)
}

// expandTargets resolves the positional arguments into a flat list of
// workbook files. File arguments are taken as-is; directory arguments
// contribute every workbook directly inside them (non-recursive), in
// directory order, so grading runs are deterministic.
func expandTargets(paths []string) ([]string, error) {
	var targets []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("submission path %s: %w", path, err)
		}

		if !info.IsDir() {
			targets = append(targets, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("submission directory %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !workbook.IsWorkbookFile(entry.Name()) {
				continue
			}
			targets = append(targets, filepath.Join(path, entry.Name()))
		}
	}
	return targets, nil
}

// newPipelineFactory returns a factory that builds one grading session
// and pipeline per submission. A Grader holds two open workbooks and is
// not shared across submissions.
func newPipelineFactory(assignment *config.Assignment, solutionPath string, tolerance float64, cfg *config.Config, logger *slog.Logger) pipeline.PipelineFactory {
	return func(_ string) (*pipeline.Pipeline, *grader.Grader) {
		g := grader.New(grader.Options{
			Tolerance: tolerance,
			RawValues: cfg.RawValues,
			Logger:    logger,
		})
		p := pipeline.DefaultPipeline(g, assignment, solutionPath, pipeline.WithLogger(logger))
		return p, g
	}
}

// gradeOne runs one submission through a fresh pipeline and returns its
// finalized report.
func gradeOne(ctx context.Context, factory pipeline.PipelineFactory, assignment, submission string, logger *slog.Logger) *model.GradeReport {
	gradeReport := model.NewGradeReport(submission, assignment)

	p, g := factory(submission)
	_ = p.Execute(ctx, gradeReport) //nolint:errcheck // Error is stored in report
	if err := g.Close(); err != nil {
		logger.WarnContext(ctx, "closing workbooks failed", "error", err)
	}

	gradeReport.Finalize()
	return gradeReport
}

// runSequentialGrade grades submissions one at a time.
func runSequentialGrade(ctx context.Context, cfg *config.Config, assignment *config.Assignment, factory pipeline.PipelineFactory, db *database.ResultDB, logger *slog.Logger) error {
	reports := make([]*model.GradeReport, 0, len(cfg.Targets))

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := filepath.Base(target)
		sctx := log.WithSubmission(ctx, name)

		fmt.Printf("Grading %s...\n", name)
		startTime := time.Now()

		gradeReport := gradeOne(sctx, factory, assignment.Name, target, logger)
		reports = append(reports, gradeReport)

		elapsed := time.Since(startTime)
		if gradeReport.Failed() {
			fmt.Printf("Grading failed in %s: %s\n\n", elapsed.Round(time.Millisecond), gradeReport.ErrorMessage)
		} else {
			fmt.Printf("Graded in %s: %d/%d correct (%.0f%%)\n\n",
				elapsed.Round(time.Millisecond), gradeReport.Matches, gradeReport.TotalCells, gradeReport.Percentage())
		}

		// Generate and output report
		if err := outputReport(cfg, gradeReport); err != nil {
			logger.Error("report failed", "submission", name, "error", err)
		}

		// Per-submission feedback file
		if err := writeFeedbackFile(cfg, gradeReport); err != nil {
			logger.Error("failed to write feedback file", "submission", name, "error", err)
		}

		// Save to database if enabled
		if err := saveGradeReport(sctx, db, gradeReport, logger); err != nil {
			logger.Error("failed to save grade report", "submission", name, "error", err)
		}
	}

	return summarizeRun(cfg, assignment.Name, reports)
}

// runBatchGrade grades multiple submissions concurrently using
// BatchProcessor.
func runBatchGrade(ctx context.Context, cfg *config.Config, assignment *config.Assignment, factory pipeline.PipelineFactory, db *database.ResultDB, logger *slog.Logger) error {
	fmt.Printf("Grading %d submissions (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(assignment.Name, factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	reports := make([]*model.GradeReport, len(cfg.Targets))
	var mu sync.Mutex
	var done int
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(gradeReport *model.GradeReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		reports[index] = gradeReport
		done++

		name := filepath.Base(gradeReport.Submission)
		if gradeReport.Failed() {
			fmt.Printf("[%d/%d] %s: grading failed (%s)\n", done, len(cfg.Targets), name, gradeReport.ErrorMessage)
		} else {
			fmt.Printf("[%d/%d] %s: %d/%d correct (%.0f%%)\n",
				done, len(cfg.Targets), name, gradeReport.Matches, gradeReport.TotalCells, gradeReport.Percentage())
		}

		// Generate and output report
		if err := outputReport(cfg, gradeReport); err != nil {
			logger.Error("report failed", "submission", name, "error", err)
		}

		// Per-submission feedback file
		if err := writeFeedbackFile(cfg, gradeReport); err != nil {
			logger.Error("failed to write feedback file", "submission", name, "error", err)
		}

		// Save to database if enabled
		if err := saveGradeReport(ctx, db, gradeReport, logger); err != nil {
			logger.Error("failed to save grade report", "submission", name, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch grading completed in %s\n", elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}

	// A canceled batch leaves nil slots; summarize what finished.
	graded := make([]*model.GradeReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			graded = append(graded, r)
		}
	}

	return summarizeRun(cfg, assignment.Name, graded)
}

// summarizeRun prints the run summary table for multi-submission runs
// and writes the CSV and XLSX summary files when a results directory is
// configured.
func summarizeRun(cfg *config.Config, assignment string, reports []*model.GradeReport) error {
	if len(reports) == 0 {
		return nil
	}

	summary := model.NewBatchSummary(assignment, reports)

	if len(reports) > 1 {
		if _, err := report.NewTextWriter(os.Stdout).WriteSummary(summary); err != nil {
			return err
		}
	}

	if cfg.ResultsDir == "" {
		return nil
	}

	stamp := summary.GeneratedAt.Format("20060102_150405")

	csvPath := filepath.Join(cfg.ResultsDir, "grading_summary_"+stamp+".csv")
	if err := writeSummaryFile(csvPath, func(f *os.File) error {
		_, err := report.NewCSVWriter(f).WriteSummary(summary)
		return err
	}); err != nil {
		return err
	}

	xlsxPath := filepath.Join(cfg.ResultsDir, "grading_summary_"+stamp+".xlsx")
	if err := writeSummaryFile(xlsxPath, func(f *os.File) error {
		_, err := report.NewXLSXWriter(f).WriteSummary(summary)
		return err
	}); err != nil {
		return err
	}

	fmt.Printf("Summary written to %s and %s\n", csvPath, xlsxPath)
	return nil
}

// writeSummaryFile creates path and hands the open file to write.
// Grade data is personal, so summary files are owner-readable only.
func writeSummaryFile(path string, write func(*os.File) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	return write(f)
}

// writeFeedbackFile writes the student-facing feedback text for one
// submission into the results directory. No-op when no results
// directory is configured.
func writeFeedbackFile(cfg *config.Config, gradeReport *model.GradeReport) error {
	if cfg.ResultsDir == "" {
		return nil
	}

	base := filepath.Base(gradeReport.Submission)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	path := filepath.Join(cfg.ResultsDir, stem+"_feedback.txt")

	return os.WriteFile(path, []byte(gradeReport.Feedback+"\n"), 0600)
}

// outputReport outputs the grade report in the requested format.
func outputReport(cfg *config.Config, gradeReport *model.GradeReport) error {
	// Writers need a finalized report; Finalize is idempotent.
	gradeReport.Finalize()

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions;
		// reports carry student names and scores
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// Machine-readable score record (what grading platforms ingest)
	if cfg.FeedbackJSON {
		_, err := report.NewFeedbackWriter(output, report.WithPrettyPrint()).Write(gradeReport)
		return err
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		_, err := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()).Write(gradeReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		_, err := report.NewMarkdownWriter(output).Write(gradeReport)
		return err
	}

	// Human-readable report (default)
	_, err := report.NewTextWriter(output, report.WithVerbose(cfg.Verbose)).Write(gradeReport)
	return err
}

// saveGradeReport saves the grade report to the database if enabled.
// If db is nil, this function is a no-op.
func saveGradeReport(ctx context.Context, db *database.ResultDB, gradeReport *model.GradeReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveGradeReport(ctx, gradeReport)
	if err != nil {
		return fmt.Errorf("failed to save grade report: %w", err)
	}

	logger.InfoContext(ctx, "grade report saved to database",
		"submission", filepath.Base(gradeReport.Submission),
		"id", id,
	)
	return nil
}
