package grader

import "testing"

func TestComparatorEqual(t *testing.T) {
	t.Parallel()

	cmp := NewComparator(DefaultTolerance)

	tests := []struct {
		name     string
		student  string
		solution string
		want     bool
	}{
		{name: "identical numbers", student: "42", solution: "42", want: true},
		{name: "numbers at tolerance bound", student: "1.00", solution: "1.01", want: true},
		{name: "numbers beyond tolerance", student: "1.00", solution: "1.02", want: false},
		{name: "currency formatting ignored", student: "1,234.50", solution: "$1234.5", want: true},
		{name: "negative numbers within tolerance", student: "-5.005", solution: "-5.01", want: true},
		{name: "tolerance is absolute not relative", student: "1000000", solution: "1000000.5", want: false},
		{name: "large numbers at tolerance bound", student: "1000000.00", solution: "1000000.01", want: true},
		{name: "identical text", student: "Yes", solution: "Yes", want: true},
		{name: "text whitespace trimmed", student: " Yes ", solution: "Yes", want: true},
		{name: "text is case sensitive", student: "Yes", solution: "yes", want: false},
		{name: "number against text", student: "1.0", solution: "one", want: false},
		{name: "scientific notation parses", student: "1e2", solution: "100", want: true},
		{name: "both empty", student: "", solution: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cmp.Equal(tt.student, tt.solution); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.student, tt.solution, got, tt.want)
			}
		})
	}
}

func TestComparatorZeroTolerance(t *testing.T) {
	t.Parallel()

	cmp := NewComparator(0)

	if !cmp.Equal("1.00", "1.00") {
		t.Error("identical numbers should match with zero tolerance")
	}
	if cmp.Equal("1.00", "1.001") {
		t.Error("differing numbers should not match with zero tolerance")
	}
}

func TestComparatorNegativeTolerance(t *testing.T) {
	t.Parallel()

	cmp := NewComparator(-1)

	if got := cmp.Tolerance(); got != 0 {
		t.Errorf("Tolerance() = %v, want 0", got)
	}
	if cmp.Equal("1.00", "1.50") {
		t.Error("negative tolerance should behave like zero, not match everything")
	}
}

func TestComparatorCustomTolerance(t *testing.T) {
	t.Parallel()

	cmp := NewComparator(0.5)

	if !cmp.Equal("10.0", "10.5") {
		t.Error("difference of 0.5 should match with tolerance 0.5")
	}
	if cmp.Equal("10.0", "10.6") {
		t.Error("difference of 0.6 should not match with tolerance 0.5")
	}
}
