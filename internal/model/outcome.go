package model

// RegionOutcome is the grading tally for one region: how many of its
// gradable cells matched the solution. Solution-empty cells are excluded
// before the tally, so Total counts only cells that were actually compared.
// Invariant: 0 <= Correct <= Total.
type RegionOutcome struct {
	// Region is the region's display name ("Classical", "GAN").
	Region string `json:"region"`

	// Sheet is the student sheet the region was graded on.
	Sheet string `json:"sheet"`

	// Correct is the number of compared cells that matched.
	Correct int `json:"correct"`

	// Total is the number of compared cells.
	Total int `json:"total"`

	// Skipped records every selection unit (a range or a coordinate)
	// that could not be resolved, with the reason. Skipped units
	// contribute nothing to Correct or Total.
	Skipped []SkippedUnit `json:"skipped,omitempty"`

	// Cells holds per-cell results when the region requests detail.
	Cells []CellResult `json:"cells,omitempty"`
}

// Percentage returns the region's match rate in [0, 100]. A region with
// no compared cells reports 0 rather than dividing by zero.
func (o RegionOutcome) Percentage() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Correct) / float64(o.Total) * 100
}

// SkippedUnit notes one selection unit that was skipped during grading.
type SkippedUnit struct {
	// Unit is the reference that failed to resolve ("K4:", "Q99x").
	Unit string `json:"unit"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`
}

// CellResult is one compared cell, captured when a region asks for
// per-cell detail so feedback can name each wrong answer.
type CellResult struct {
	// Cell is the A1-style coordinate.
	Cell string `json:"cell"`

	// Student is the student's normalized value.
	Student string `json:"student"`

	// Solution is the expected normalized value.
	Solution string `json:"solution"`

	// Correct reports whether the values matched.
	Correct bool `json:"correct"`
}
