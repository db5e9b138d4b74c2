package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sheetgrade/sheetgrade/internal/model"
)

// dbFileName is the name of the SQLite database file inside the data
// directory.
const dbFileName = "sheetgrade.db"

// ResultDB provides SQLite-based storage for grade reports.
// It manages connection pooling and provides methods for saving and
// querying grading history.
//
// Design decision: We use a single database file for all assignments
// rather than one file per assignment. This keeps the history command
// simple and makes backup/restore a single-file operation.
type ResultDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ResultDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure directory exists
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ResultDB) createTables() error {
	schema := `
	-- Grade reports store one row per graded submission.
	-- Summary columns are queryable; the full report is kept as JSON.
	CREATE TABLE IF NOT EXISTS grade_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		submission TEXT NOT NULL,
		assignment TEXT NOT NULL,
		digest TEXT,
		score REAL NOT NULL,
		matches INTEGER NOT NULL,
		total_cells INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_submission ON grade_reports(submission);
	CREATE INDEX IF NOT EXISTS idx_reports_assignment ON grade_reports(assignment);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON grade_reports(timestamp);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveGradeReport saves a finalized grade report and returns its row ID.
// The submission is stored by base file name so resubmissions of the
// same workbook group together regardless of where they were graded
// from.
func (rdb *ResultDB) SaveGradeReport(ctx context.Context, report *model.GradeReport) (int64, error) {
	report.Finalize()

	// The stored JSON gets the same normalization as the submission
	// column, so reports read back by ID name the submission the same
	// way the rows they were listed from do.
	stored := *report
	stored.Submission = filepath.Base(report.Submission)

	reportJSON, err := json.Marshal(&stored)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO grade_reports (submission, assignment, digest, score, matches, total_cells, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		stored.Submission,
		report.Assignment,
		report.Digest,
		report.Score,
		report.Matches,
		report.TotalCells,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save grade report: %w", err)
	}

	return result.LastInsertId()
}

// ListSubmissions returns the base file names of all submissions with
// stored reports.
func (rdb *ResultDB) ListSubmissions(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT submission FROM grade_reports
	ORDER BY submission
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []string
	for rows.Next() {
		var submission string
		if err := rows.Scan(&submission); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, submission)
	}

	return submissions, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying grading history without loading the full
// report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64 `json:"id"`

	// Submission is the base file name of the graded workbook.
	Submission string `json:"submission"`

	// Assignment is the assignment the submission was graded against.
	Assignment string `json:"assignment"`

	// Timestamp is when grading was performed.
	Timestamp time.Time `json:"timestamp"`

	// Score is the fractional score in [0, 1].
	Score float64 `json:"score"`

	// Matches and TotalCells are the overall cell tallies.
	Matches    int `json:"matches"`
	TotalCells int `json:"total_cells"`

	// Digest is the content fingerprint of the submission file, empty
	// when fingerprinting failed.
	Digest string `json:"digest,omitempty"`
}

// ListReports retrieves report metadata for a submission, newest first.
// This is more efficient than LatestReports when only metadata is needed.
func (rdb *ResultDB) ListReports(ctx context.Context, submission string) ([]ReportMetadata, error) {
	// CURRENT_TIMESTAMP has second granularity, so reports saved in the
	// same second tie on timestamp. The id breaks ties in insert order.
	query := `
	SELECT id, submission, assignment, timestamp, score, matches, total_cells, digest
	FROM grade_reports
	WHERE submission = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var digest sql.NullString

		err := rows.Scan(
			&meta.ID,
			&meta.Submission,
			&meta.Assignment,
			&timestamp,
			&meta.Score,
			&meta.Matches,
			&meta.TotalCells,
			&digest,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		// Parse timestamp (SQLite may return different formats depending on version/configuration)
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Digest = digest.String

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReport retrieves a full grade report by its database ID.
func (rdb *ResultDB) GetReport(ctx context.Context, id int64) (*model.GradeReport, error) {
	query := `
	SELECT report_json FROM grade_reports
	WHERE id = ?
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.GradeReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// LatestReports retrieves up to n full reports for a submission, newest
// first. Pass n <= 0 for all reports.
func (rdb *ResultDB) LatestReports(ctx context.Context, submission string, n int) ([]*model.GradeReport, error) {
	query := `
	SELECT report_json FROM grade_reports
	WHERE submission = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []any{submission}

	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.GradeReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.GradeReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
