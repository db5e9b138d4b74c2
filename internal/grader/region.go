package grader

import (
	"context"
	"errors"

	"github.com/sheetgrade/sheetgrade/internal/model"
	"github.com/sheetgrade/sheetgrade/internal/workbook"
)

// GradeRegion grades one region of the student workbook against the
// solution workbook and returns its outcome.
//
// GradeRegion never returns an error. Units that cannot be resolved or
// read are recorded in the outcome's Skipped list with a reason, and
// the remaining units are still graded. When ctx is canceled the
// partial outcome graded so far is returned; callers that care about
// cancellation check ctx themselves.
func (g *Grader) GradeRegion(ctx context.Context, region Region) model.RegionOutcome {
	out := model.RegionOutcome{Region: region.Name, Sheet: region.Sheet}

	if g.student == nil || g.solution == nil {
		g.skipAll(ctx, &out, region.Units, ErrNotOpened)
		return out
	}

	student, serr := g.student.Sheet(region.Sheet)
	solution, werr := g.solution.Sheet(region.solutionSheet())
	if err := errors.Join(serr, werr); err != nil {
		g.skipAll(ctx, &out, region.Units, err)
		return out
	}

	for _, unit := range region.Units {
		if ctx.Err() != nil {
			return out
		}
		g.gradeUnit(ctx, unit, student, solution, region.Detail, &out)
	}

	return out
}

// gradeUnit resolves one selection unit and folds its cell comparisons
// into the outcome.
func (g *Grader) gradeUnit(ctx context.Context, unit Unit, student, solution *workbook.Sheet, detail bool, out *model.RegionOutcome) {
	cells, err := unit.resolve(solution)
	if err != nil {
		g.skip(ctx, out, unit.Label(), err)
		return
	}

	for _, cell := range cells {
		studentVal, serr := student.Value(cell)
		solutionVal, werr := solution.Value(cell)
		if err := errors.Join(serr, werr); err != nil {
			g.skip(ctx, out, cell, err)
			continue
		}

		// Blank solution cells are not answers. They count toward
		// neither the numerator nor the denominator.
		want := Normalize(solutionVal)
		if IsEmpty(want) {
			continue
		}

		got := Normalize(studentVal)
		correct := g.cmp.Equal(got, want)

		out.Total++
		if correct {
			out.Correct++
		}
		if detail {
			out.Cells = append(out.Cells, model.CellResult{
				Cell:     cell,
				Student:  got,
				Solution: want,
				Correct:  correct,
			})
		}
	}
}

// skip records a single skipped unit and logs it.
func (g *Grader) skip(ctx context.Context, out *model.RegionOutcome, unit string, err error) {
	g.logger.WarnContext(ctx, "skipping unit",
		"region", out.Region,
		"unit", unit,
		"error", err,
	)
	out.Skipped = append(out.Skipped, model.SkippedUnit{
		Unit:   unit,
		Reason: err.Error(),
	})
}

// skipAll records every unit of a region as skipped for the same
// reason, used when the region's sheets cannot be resolved at all.
func (g *Grader) skipAll(ctx context.Context, out *model.RegionOutcome, units []Unit, err error) {
	for _, unit := range units {
		g.skip(ctx, out, unit.Label(), err)
	}
}
