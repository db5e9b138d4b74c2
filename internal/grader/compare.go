package grader

import (
	"math"
	"strconv"
)

const (
	// DefaultTolerance is the absolute difference two numeric answers
	// may have and still count as a match.
	DefaultTolerance = 0.01

	// floatSlack absorbs binary representation error in the tolerance
	// check. Without it values exactly at the bound fail: 1.01 - 1.00
	// computes to slightly more than 0.01 in float64.
	floatSlack = 1e-9
)

// Comparator decides whether a student answer matches a solution
// answer.
//
// Both values are normalized before comparison. If both parse as
// numbers they match when their absolute difference is within the
// tolerance; the tolerance is absolute rather than relative, so small
// and large magnitudes clear the same bound. Values that do not parse
// as numbers fall back to exact, case sensitive string equality: "Yes"
// and "yes" are different answers, " Yes " and "Yes" are the same.
//
// Design decision: One comparator handles both numeric and free-text
// answers because submissions carry no schema describing which cells
// hold which type. Trying the numeric interpretation first and falling
// back to strings lets a single pass grade mixed regions.
type Comparator struct {
	// tolerance is the absolute numeric tolerance.
	tolerance float64
}

// NewComparator returns a comparator with the given absolute numeric
// tolerance. A negative tolerance is treated as zero, which requires
// numerically identical answers.
func NewComparator(tolerance float64) Comparator {
	if tolerance < 0 {
		tolerance = 0
	}
	return Comparator{tolerance: tolerance}
}

// Tolerance returns the absolute numeric tolerance in use.
func (c Comparator) Tolerance() float64 {
	return c.tolerance
}

// Equal reports whether the student answer matches the solution answer.
func (c Comparator) Equal(student, solution string) bool {
	a := Normalize(student)
	b := Normalize(solution)

	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return math.Abs(fa-fb) <= c.tolerance+floatSlack
	}

	return a == b
}
