// Package model defines the data structures shared across sheetgrade:
// the grade report produced for each submission, per-region outcomes,
// score bands for qualitative feedback, and batch run summaries.
package model
