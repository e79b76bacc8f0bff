package calculator

import (
	"fmt"
	"math"
)

// Pending holds split inputs that passed shape checks but have not been
// computed yet. Every split path (normal, budget, currency) goes through
// Collect and then Finalize.
type Pending struct {
	Method  Method
	Total   float64
	Members []string

	// Inputs holds one percentage or contribution per member.
	// It is ignored for MethodEven.
	Inputs []float64
}

// Result is a computed split.
type Result struct {
	Method Method
	Total  float64
	Shares []Share

	// Entered is the sum of the inputs (percentages or contributions).
	// For an even split it equals Total.
	Entered float64
}

// Collect checks the shape of the inputs and captures them for Finalize.
// Values are copied so later changes by the caller do not leak in.
func Collect(method Method, total float64, members []string, inputs []float64) (*Pending, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if !validAmount(total) {
		return nil, fmt.Errorf("%w: total %v", ErrInvalidAmount, total)
	}
	switch method {
	case MethodEven:
		inputs = nil
	case MethodPercentage, MethodFixed:
		if len(inputs) != len(members) {
			return nil, fmt.Errorf("%w: got %d values for %d members", ErrInputCount, len(inputs), len(members))
		}
		for _, v := range inputs {
			if !validAmount(v) {
				return nil, fmt.Errorf("%w: input %v", ErrInvalidAmount, v)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	return &Pending{
		Method:  method,
		Total:   total,
		Members: append([]string(nil), members...),
		Inputs:  append([]float64(nil), inputs...),
	}, nil
}

// Finalize runs the split. A *ValidationError means the inputs were
// rejected and nothing was computed.
func (p *Pending) Finalize() (*Result, error) {
	var (
		shares []Share
		err    error
	)
	switch p.Method {
	case MethodEven:
		shares = Even(p.Total, p.Members)
	case MethodPercentage:
		shares, err = Percentage(p.Total, p.Members, p.Inputs)
	case MethodFixed:
		shares, err = Fixed(p.Total, p.Members, p.Inputs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, p.Method)
	}
	if err != nil {
		return nil, err
	}

	entered := p.Total
	if p.Method != MethodEven {
		entered = sumOf(p.Inputs)
	}
	return &Result{
		Method:  p.Method,
		Total:   p.Total,
		Shares:  shares,
		Entered: entered,
	}, nil
}

// validAmount rejects NaN, infinities and negatives.
func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
