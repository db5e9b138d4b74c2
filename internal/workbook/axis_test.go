package workbook

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		want Range
	}{
		{
			name: "simple rectangle",
			ref:  "B2:D4",
			want: Range{StartCol: 2, StartRow: 2, EndCol: 4, EndRow: 4},
		},
		{
			name: "single cell",
			ref:  "K21",
			want: Range{StartCol: 11, StartRow: 21, EndCol: 11, EndRow: 21},
		},
		{
			name: "single column span",
			ref:  "K4:K6",
			want: Range{StartCol: 11, StartRow: 4, EndCol: 11, EndRow: 6},
		},
		{
			name: "reversed corners normalize",
			ref:  "D4:B2",
			want: Range{StartCol: 2, StartRow: 2, EndCol: 4, EndRow: 4},
		},
		{
			name: "absolute markers accepted",
			ref:  "$B$2:$D$4",
			want: Range{StartCol: 2, StartRow: 2, EndCol: 4, EndRow: 4},
		},
		{
			name: "surrounding whitespace",
			ref:  " B2 : D4 ",
			want: Range{StartCol: 2, StartRow: 2, EndCol: 4, EndRow: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRange(tt.ref)
			if err != nil {
				t.Fatalf("ParseRange(%q) returned error: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("ParseRange(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestParseRangeInvalid(t *testing.T) {
	t.Parallel()

	for _, ref := range []string{"", "K4:", ":K6", "4K:K6", "A1:B2:C3", "K"} {
		t.Run(ref, func(t *testing.T) {
			t.Parallel()

			_, err := ParseRange(ref)
			if err == nil {
				t.Fatalf("ParseRange(%q) should fail", ref)
			}
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("ParseRange(%q) error = %v, want ErrInvalidRange", ref, err)
			}
		})
	}
}

func TestRangeCellsOrder(t *testing.T) {
	t.Parallel()

	t.Run("rows outer columns inner", func(t *testing.T) {
		t.Parallel()

		r, err := ParseRange("B2:C3")
		if err != nil {
			t.Fatal(err)
		}

		want := []string{"B2", "C2", "B3", "C3"}
		if got := r.Cells(); !reflect.DeepEqual(got, want) {
			t.Errorf("Cells() = %v, want %v", got, want)
		}
	})

	t.Run("single cell", func(t *testing.T) {
		t.Parallel()

		r, err := ParseRange("K21")
		if err != nil {
			t.Fatal(err)
		}

		want := []string{"K21"}
		if got := r.Cells(); !reflect.DeepEqual(got, want) {
			t.Errorf("Cells() = %v, want %v", got, want)
		}
	})
}

func TestRangeCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want int
	}{
		{"A1", 1},
		{"K4:K6", 3},
		{"B2:D4", 9},
		{"E1:BA1", 49},
	}

	for _, tt := range tests {
		r, err := ParseRange(tt.ref)
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", tt.ref, err)
		}
		if got := r.Count(); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestRangeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want string
	}{
		{"B2:D4", "B2:D4"},
		{"D4:B2", "B2:D4"},
		{"K21", "K21"},
		{"K21:K21", "K21"},
	}

	for _, tt := range tests {
		r, err := ParseRange(tt.ref)
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", tt.ref, err)
		}
		if got := r.String(); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestExpandRange(t *testing.T) {
	t.Parallel()

	got, err := ExpandRange("K4:K6")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"K4", "K5", "K6"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandRange(K4:K6) = %v, want %v", got, want)
	}

	if _, err := ExpandRange("bogus:"); err == nil {
		t.Error("ExpandRange should fail on malformed reference")
	}
}

func TestValidateCell(t *testing.T) {
	t.Parallel()

	if err := ValidateCell("AA10"); err != nil {
		t.Errorf("ValidateCell(AA10) = %v, want nil", err)
	}

	for _, ref := range []string{"", "K", "42", "1A"} {
		if err := ValidateCell(ref); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("ValidateCell(%q) = %v, want ErrInvalidCoordinate", ref, err)
		}
	}
}
