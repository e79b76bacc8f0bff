package calculator

import (
	"fmt"
	"math"
)

// Tolerance is the absolute slack allowed when percentages must sum to 100
// or fixed contributions must sum to the bill total.
const Tolerance = 0.01

// Method selects how a total is divided among members.
type Method string

const (
	MethodEven       Method = "even"
	MethodPercentage Method = "percentage"
	MethodFixed      Method = "fixed"
)

// ParseMethod converts a user-supplied name into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodEven, MethodPercentage, MethodFixed:
		return Method(s), nil
	case "":
		return MethodEven, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Share is one member's part of a split. Amounts are not rounded here;
// rounding is a display concern.
type Share struct {
	Member string
	Amount float64
}

// Even divides total equally: each member pays total / len(members).
// The caller must pass at least one member.
func Even(total float64, members []string) []Share {
	each := total / float64(len(members))
	shares := make([]Share, len(members))
	for i, m := range members {
		shares[i] = Share{Member: m, Amount: each}
	}
	return shares
}

// Percentage gives each member total * pct / 100. The percentages must sum
// to 100 within Tolerance, otherwise nothing is computed.
func Percentage(total float64, members []string, percentages []float64) ([]Share, error) {
	sum := sumOf(percentages)
	// written so a NaN sum is rejected too
	if !(math.Abs(sum-100) <= Tolerance) {
		return nil, &ValidationError{Kind: Invalid, Entered: sum, Target: 100}
	}

	shares := make([]Share, len(members))
	for i, m := range members {
		shares[i] = Share{Member: m, Amount: total * (percentages[i] / 100)}
	}
	return shares, nil
}

// Fixed accepts per-member contributions as entered when they add up to
// total within Tolerance.
func Fixed(total float64, members []string, amounts []float64) ([]Share, error) {
	sum := sumOf(amounts)
	switch {
	case sum == 0:
		return nil, &ValidationError{Kind: Incomplete, Entered: 0, Target: total}
	case math.Abs(sum-total) < Tolerance:
		// accepted
	case sum > total:
		return nil, &ValidationError{Kind: Exceeds, Entered: sum, Target: total}
	default:
		return nil, &ValidationError{Kind: Insufficient, Entered: sum, Target: total}
	}

	shares := make([]Share, len(members))
	for i, m := range members {
		shares[i] = Share{Member: m, Amount: amounts[i]}
	}
	return shares, nil
}

func sumOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
