package model

// Band classifies an overall score into the qualitative tier used for the
// closing line of student feedback.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Band int

const (
	// BandNeedsWork covers scores below 0.70. The submission needs a
	// substantial rework before resubmission.
	BandNeedsWork Band = iota

	// BandFair covers scores in [0.70, 0.80): most answers are right but
	// several need revision.
	BandFair

	// BandGood covers scores in [0.80, 0.90): a handful of answers are
	// off.
	BandGood

	// BandExcellent covers scores of 0.90 and above.
	BandExcellent
)

// Band thresholds are inclusive lower bounds on the fractional score,
// evaluated highest-first.
const (
	excellentFloor = 0.90
	goodFloor      = 0.80
	fairFloor      = 0.70
)

// BandForScore returns the band for a fractional score in [0, 1].
func BandForScore(score float64) Band {
	switch {
	case score >= excellentFloor:
		return BandExcellent
	case score >= goodFloor:
		return BandGood
	case score >= fairFloor:
		return BandFair
	default:
		return BandNeedsWork
	}
}

// String returns a human-readable representation of the band.
func (b Band) String() string {
	switch b {
	case BandExcellent:
		return "EXCELLENT"
	case BandGood:
		return "GOOD"
	case BandFair:
		return "FAIR"
	case BandNeedsWork:
		return "NEEDS WORK"
	default:
		return "UNKNOWN"
	}
}

// Remark returns the closing feedback line for the band. The wording is
// part of the grading contract: downstream course material quotes these
// sentences, so they must not drift.
func (b Band) Remark() string {
	switch b {
	case BandExcellent:
		return "Excellent work!"
	case BandGood:
		return "Good job! A few answers need improvement."
	case BandFair:
		return "You're on the right track, but several answers need revision."
	default:
		return "Please review your work and try again."
	}
}
