package calculator

import "math"

// BudgetStatus is the state of a budget after a spend.
type BudgetStatus string

const (
	// BudgetContinue: money left, more rounds expected.
	BudgetContinue BudgetStatus = "continue"
	// BudgetExhausted: the budget was used exactly.
	BudgetExhausted BudgetStatus = "exhausted"
	// BudgetOverspent: spending went past the budget. Reported as a warning;
	// the session still ends.
	BudgetOverspent BudgetStatus = "overspent"
)

// exhaustedEpsilon absorbs float noise when deciding the budget hit zero.
const exhaustedEpsilon = 1e-9

// Budget tracks spending against a declared total across repeated rounds.
// It lives in a session and is never persisted.
type Budget struct {
	Set       float64
	Remaining float64

	// Active reports whether more spend rounds are expected.
	Active bool

	// Round counts accepted spends since the budget was declared.
	Round int

	// staged holds the inputs collected for the current round.
	staged *Pending
}

// SpendResult reports one accepted spend.
type SpendResult struct {
	Split     *Result
	Remaining float64
	Status    BudgetStatus
	Round     int
}

// NewBudget declares a budget of set.
func NewBudget(set float64) (*Budget, error) {
	b := &Budget{}
	if err := b.Declare(set); err != nil {
		return nil, err
	}
	return b, nil
}

// Declare starts (or restarts) the budget at set. Changing the amount is
// only allowed before the first spend of an active session.
func (b *Budget) Declare(set float64) error {
	if set <= 0 || math.IsNaN(set) || math.IsInf(set, 0) {
		return ErrInvalidBudget
	}
	if b.Active && b.Round > 0 {
		return ErrBudgetInProgress
	}
	b.Set = set
	b.Remaining = set
	b.Active = true
	b.Round = 0
	b.staged = nil
	return nil
}

// Stage records the inputs for the current round without spending.
// Staging again replaces the previous inputs.
func (b *Budget) Stage(p *Pending) error {
	if !b.Active {
		return ErrBudgetClosed
	}
	if p.Total <= 0 {
		return ErrInvalidSpend
	}
	b.staged = p
	return nil
}

// Commit finalizes the staged split and, if it succeeds, subtracts its
// total from the remaining budget. Staged inputs are cleared once a round
// is accepted so the next round starts blank.
func (b *Budget) Commit() (*SpendResult, error) {
	if !b.Active {
		return nil, ErrBudgetClosed
	}
	if b.staged == nil {
		return nil, ErrNothingStaged
	}

	result, err := b.staged.Finalize()
	if err != nil {
		return nil, err
	}

	b.Remaining -= result.Total
	b.Round++
	b.staged = nil

	status := BudgetContinue
	switch {
	case math.Abs(b.Remaining) < exhaustedEpsilon:
		b.Remaining = 0
		status = BudgetExhausted
	case b.Remaining < 0:
		status = BudgetOverspent
	}
	b.Active = status == BudgetContinue

	return &SpendResult{
		Split:     result,
		Remaining: b.Remaining,
		Status:    status,
		Round:     b.Round,
	}, nil
}

// Spend stages p and commits it in one step.
func (b *Budget) Spend(p *Pending) (*SpendResult, error) {
	if err := b.Stage(p); err != nil {
		return nil, err
	}
	return b.Commit()
}

// Reset zeroes the budget and drops any staged inputs.
func (b *Budget) Reset() {
	b.Set = 0
	b.Remaining = 0
	b.Active = false
	b.Round = 0
	b.staged = nil
}

// Overspent returns how far past the budget spending went, or zero.
func (b *Budget) Overspent() float64 {
	if b.Remaining < 0 {
		return -b.Remaining
	}
	return 0
}
