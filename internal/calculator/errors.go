package calculator

import (
	"errors"
	"fmt"
)

var (
	ErrNoMembers     = errors.New("must have at least one member")
	ErrInputCount    = errors.New("need exactly one value per member")
	ErrUnknownMethod = errors.New("unknown split method")
	ErrInvalidRate   = errors.New("exchange rates must be positive")
	ErrInvalidAmount = errors.New("amounts must be finite and not negative")

	ErrInvalidBudget    = errors.New("budget must be greater than zero")
	ErrInvalidSpend     = errors.New("spend amount must be greater than zero")
	ErrBudgetClosed     = errors.New("budget session is not active")
	ErrBudgetInProgress = errors.New("budget session already has spending; reset it first")
	ErrNothingStaged    = errors.New("no spend staged for this round")
)

// Kind classifies a rejected split.
type Kind string

const (
	// Invalid: percentages do not sum to 100.
	Invalid Kind = "invalid"
	// Incomplete: no fixed contributions entered yet.
	Incomplete Kind = "incomplete"
	// Exceeds: fixed contributions add up to more than the total.
	Exceeds Kind = "exceeds"
	// Insufficient: fixed contributions add up to less than the total.
	Insufficient Kind = "insufficient"
)

// ValidationError reports why a split was not computed. It is an ordinary
// outcome the caller shows back to the user, not a failure of the engine.
type ValidationError struct {
	Kind    Kind
	Entered float64
	Target  float64
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case Invalid:
		return fmt.Sprintf("percentages total %.2f%% (must equal 100%%)", e.Entered)
	case Incomplete:
		return "enter each person's contribution"
	case Exceeds:
		return fmt.Sprintf("total entered (%.2f) exceeds the bill (%.2f)", e.Entered, e.Target)
	case Insufficient:
		return fmt.Sprintf("total entered (%.2f) is below the bill (%.2f)", e.Entered, e.Target)
	}
	return fmt.Sprintf("split rejected: %s", e.Kind)
}

// AsValidation unwraps err into a *ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
