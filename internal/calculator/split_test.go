package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestEven(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		members []string
	}{
		{"three ways", 90.0, []string{"Alice", "Bob", "Carol"}},
		{"one person", 12.34, []string{"Alice"}},
		{"non-terminating", 100.0, []string{"Alice", "Bob", "Carol"}},
		{"duplicate names", 10.0, []string{"Alice", "Alice"}},
		{"zero total", 0, []string{"Alice", "Bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := Even(tt.total, tt.members)
			if len(shares) != len(tt.members) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.members))
			}
			want := tt.total / float64(len(tt.members))
			for i, s := range shares {
				if s.Member != tt.members[i] {
					t.Errorf("share %d member = %s, want %s", i, s.Member, tt.members[i])
				}
				if s.Amount != want {
					t.Errorf("share %d amount = %v, want %v", i, s.Amount, want)
				}
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		members      []string
		percentages  []float64
		wantKind     Kind
		validateFunc func(t *testing.T, shares []Share)
	}{
		{
			name:        "fifty twenty-five twenty-five",
			total:       90.0,
			members:     []string{"Alice", "Bob", "Carol"},
			percentages: []float64{50, 25, 25},
			validateFunc: func(t *testing.T, shares []Share) {
				want := []float64{45.0, 22.5, 22.5}
				for i, s := range shares {
					if math.Abs(s.Amount-want[i]) > 1e-9 {
						t.Errorf("%s = %v, want %v", s.Member, s.Amount, want[i])
					}
				}
			},
		},
		{
			name:        "thirds within tolerance",
			total:       100.0,
			members:     []string{"Alice", "Bob", "Carol"},
			percentages: []float64{33.33, 33.33, 33.335},
			validateFunc: func(t *testing.T, shares []Share) {
				// 99.995% is inside the tolerance
				sum := 0.0
				for _, s := range shares {
					sum += s.Amount
				}
				if math.Abs(sum-99.995) > 1e-9 {
					t.Errorf("sum = %v, want 99.995", sum)
				}
			},
		},
		{
			name:        "short of 100",
			total:       50.0,
			members:     []string{"Alice", "Bob"},
			percentages: []float64{50, 40},
			wantKind:    Invalid,
		},
		{
			name:        "over 100",
			total:       50.0,
			members:     []string{"Alice", "Bob"},
			percentages: []float64{60, 41},
			wantKind:    Invalid,
		},
		{
			name:        "all zero",
			total:       50.0,
			members:     []string{"Alice"},
			percentages: []float64{0},
			wantKind:    Invalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Percentage(tt.total, tt.members, tt.percentages)
			if tt.wantKind != "" {
				v, ok := AsValidation(err)
				if !ok {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if v.Kind != tt.wantKind {
					t.Errorf("kind = %s, want %s", v.Kind, tt.wantKind)
				}
				if shares != nil {
					t.Error("no shares should be computed on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Percentage() error = %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestPercentageSumsToTotal(t *testing.T) {
	lists := [][]float64{
		{100},
		{50, 50},
		{10, 20, 30, 40},
		{12.5, 12.5, 25, 50},
		{33.34, 33.33, 33.33},
		{99.995, 0.005},
	}
	totals := []float64{0.01, 1, 19.99, 1234.56}

	for _, pcts := range lists {
		members := make([]string, len(pcts))
		for i := range members {
			members[i] = string(rune('A' + i))
		}
		for _, total := range totals {
			shares, err := Percentage(total, members, pcts)
			if err != nil {
				t.Fatalf("Percentage(%v, %v) error = %v", total, pcts, err)
			}
			sum := 0.0
			for _, s := range shares {
				sum += s.Amount
			}
			if math.Abs(sum-total) > total*Tolerance/100+1e-9 {
				t.Errorf("Percentage(%v, %v) sums to %v", total, pcts, sum)
			}
		}
	}
}

func TestFixed(t *testing.T) {
	tests := []struct {
		name        string
		total       float64
		amounts     []float64
		wantKind    Kind
		wantEntered float64
	}{
		{"exact", 100, []float64{30, 30, 40}, "", 0},
		{"within tolerance", 100, []float64{33.33, 33.33, 33.335}, "", 0},
		{"nothing entered", 100, []float64{0, 0, 0}, Incomplete, 0},
		{"too much", 100, []float64{50, 50, 1}, Exceeds, 101},
		{"too little", 100, []float64{30, 30, 30}, Insufficient, 90},
	}

	members := []string{"Alice", "Bob", "Carol"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Fixed(tt.total, members, tt.amounts)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Fixed() error = %v", err)
				}
				for i, s := range shares {
					if s.Amount != tt.amounts[i] {
						t.Errorf("%s = %v, want %v unchanged", s.Member, s.Amount, tt.amounts[i])
					}
				}
				return
			}

			var v *ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if v.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", v.Kind, tt.wantKind)
			}
			if math.Abs(v.Entered-tt.wantEntered) > 1e-9 {
				t.Errorf("entered = %v, want %v", v.Entered, tt.wantEntered)
			}
			if tt.wantKind != Incomplete && v.Target != tt.total {
				t.Errorf("target = %v, want %v", v.Target, tt.total)
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	err := &ValidationError{Kind: Insufficient, Entered: 90, Target: 100}
	if got, want := err.Error(), "total entered (90.00) is below the bill (100.00)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"": MethodEven, "even": MethodEven, "percentage": MethodPercentage, "fixed": MethodFixed} {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMethod("by-vibes"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestConvert(t *testing.T) {
	got, err := Convert(100, 1.0, 4.6)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if math.Abs(got-460.0) > 1e-9 {
		t.Errorf("Convert(100, USD, MYR) = %v, want 460", got)
	}

	got, err = Convert(460, 4.6, 0.91)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if math.Abs(got-91.0) > 1e-9 {
		t.Errorf("Convert(460, MYR, EUR) = %v, want 91", got)
	}

	rate, err := CrossRate(1.35, 148.5)
	if err != nil {
		t.Fatalf("CrossRate() error = %v", err)
	}
	if math.Abs(rate-110.0) > 1e-9 {
		t.Errorf("CrossRate(SGD, JPY) = %v, want 110", rate)
	}

	if _, err := Convert(100, 0, 1); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("expected ErrInvalidRate, got %v", err)
	}
}

func TestPercentageRejectsNaN(t *testing.T) {
	shares, err := Percentage(90, []string{"a", "b"}, []float64{math.NaN(), 100})
	v, ok := AsValidation(err)
	if !ok {
		t.Fatalf("Percentage() error = %v, want a validation error", err)
	}
	if v.Kind != Invalid {
		t.Errorf("Kind = %v, want %v", v.Kind, Invalid)
	}
	if shares != nil {
		t.Errorf("shares = %v, want none", shares)
	}
}
