package config

import "fmt"

// Region defines one independently graded cell selection on a sheet.
//
// A region carries a selection strategy: explicit rectangular ranges,
// explicit single coordinates, or border derivation (every cell of the
// solution sheet that draws a border is an answer cell). Ranges and cells
// may be combined in one region; borderMarked stands alone. Range and
// coordinate syntax is NOT validated here: a malformed entry is a
// region-local condition at grading time (skipped with a warning), not a
// reason to reject the whole assignment file.
type Region struct {
	// Name identifies the region in feedback lines ("Classical: 8/10").
	Name string `yaml:"name"`

	// Sheet is the student sheet the region grades.
	Sheet string `yaml:"sheet"`

	// SolutionSheet overrides the sheet name looked up in the solution
	// workbook. Empty means "same name as Sheet". Used by layouts where
	// students fill a sheet named differently from the reference sheet.
	SolutionSheet string `yaml:"solutionSheet,omitempty"`

	// Ranges lists A1-style rectangular ranges ("K4:K6") graded cell by
	// cell, rows top-to-bottom and columns left-to-right.
	Ranges []string `yaml:"ranges,omitempty"`

	// Cells lists individual A1-style coordinates graded independently
	// of any range.
	Cells []string `yaml:"cells,omitempty"`

	// BorderMarked derives the graded cell set from the solution sheet:
	// every cell whose style draws a border on at least one edge.
	BorderMarked bool `yaml:"borderMarked,omitempty"`

	// Detail records a per-cell result (student value, expected value,
	// match) for the region, so feedback can name each wrong answer.
	Detail bool `yaml:"detail,omitempty"`
}

// SolutionSheetName returns the sheet name to read from the solution
// workbook for this region.
func (r Region) SolutionSheetName() string {
	if r.SolutionSheet != "" {
		return r.SolutionSheet
	}
	return r.Sheet
}

// HasSelection reports whether the region defines at least one selection
// strategy.
func (r Region) HasSelection() bool {
	return len(r.Ranges) > 0 || len(r.Cells) > 0 || r.BorderMarked
}

// Assignment is the external definition of what to grade: the reference
// solution and the named regions to compare, loaded from a YAML file.
// One engine serves any number of assignment layouts by being handed a
// different Assignment; nothing about regions or sheet names is compiled in.
type Assignment struct {
	// Name labels the assignment in reports and the history database.
	Name string `yaml:"assignment"`

	// Solution is the default path of the reference solution workbook,
	// relative to the assignment file's directory unless absolute. The
	// --solution flag overrides it.
	Solution string `yaml:"solution,omitempty"`

	// Tolerance is the absolute numeric comparison tolerance. Zero means
	// DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Regions are the graded regions, in report order.
	Regions []Region `yaml:"regions"`
}

// EffectiveTolerance returns the tolerance to grade with, falling back to
// DefaultTolerance when the assignment does not set one.
func (a *Assignment) EffectiveTolerance() float64 {
	if a.Tolerance > 0 {
		return a.Tolerance
	}
	return DefaultTolerance
}

// RequiredSheets returns the student-side sheet names the assignment
// grades, in region order without duplicates. A submission missing any of
// these fails before region grading starts.
func (a *Assignment) RequiredSheets() []string {
	var sheets []string
	seen := make(map[string]bool)
	for _, r := range a.Regions {
		if r.Sheet == "" || seen[r.Sheet] {
			continue
		}
		seen[r.Sheet] = true
		sheets = append(sheets, r.Sheet)
	}
	return sheets
}

// SolutionSheets returns the solution-side sheet names the assignment
// reads, in region order without duplicates. These are the sheets a
// solution workbook must carry, and the default sheet set the extract
// command copies out of a master workbook.
func (a *Assignment) SolutionSheets() []string {
	var sheets []string
	seen := make(map[string]bool)
	for _, r := range a.Regions {
		name := r.SolutionSheetName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sheets = append(sheets, name)
	}
	return sheets
}

// Validate checks that the assignment definition is usable.
// It returns the first problem found.
func (a *Assignment) Validate() error {
	if a.Name == "" {
		return ErrNoAssignmentName
	}
	if len(a.Regions) == 0 {
		return ErrNoRegions
	}
	if a.Tolerance < 0 {
		return ErrInvalidTolerance
	}

	for i, r := range a.Regions {
		if r.Name == "" {
			return fmt.Errorf("%w: region %d has no name", ErrInvalidRegion, i+1)
		}
		if r.Sheet == "" {
			return fmt.Errorf("%w: region %q has no sheet", ErrInvalidRegion, r.Name)
		}
		if !r.HasSelection() {
			return fmt.Errorf("%w: region %q selects no cells (set ranges, cells, or borderMarked)", ErrInvalidRegion, r.Name)
		}
	}
	return nil
}
