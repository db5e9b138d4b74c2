// Package database provides SQLite-based storage for grading history.
//
// This package implements the ResultDB, which stores one row per graded
// submission: queryable summary columns (submission, assignment, score,
// tallies) alongside the full grade report as JSON. The history command
// reads it to list and compare a student's attempts over time.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
