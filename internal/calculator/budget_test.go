package calculator

import (
	"errors"
	"math"
	"testing"
)

func mustCollect(t *testing.T, method Method, total float64, members []string, inputs []float64) *Pending {
	t.Helper()
	p, err := Collect(method, total, members, inputs)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return p
}

func TestBudgetOverspend(t *testing.T) {
	members := []string{"Alice", "Bob"}
	b, err := NewBudget(100)
	if err != nil {
		t.Fatalf("NewBudget() error = %v", err)
	}

	res, err := b.Spend(mustCollect(t, MethodEven, 40, members, nil))
	if err != nil {
		t.Fatalf("first spend error = %v", err)
	}
	if res.Status != BudgetContinue || res.Remaining != 60 {
		t.Errorf("after 40: status=%s remaining=%v, want continue/60", res.Status, res.Remaining)
	}
	if !b.Active {
		t.Error("budget should still be active")
	}

	res, err = b.Spend(mustCollect(t, MethodEven, 70, members, nil))
	if err != nil {
		t.Fatalf("second spend error = %v", err)
	}
	if res.Status != BudgetOverspent {
		t.Errorf("status = %s, want overspent", res.Status)
	}
	if res.Remaining != -10 || b.Remaining != -10 {
		t.Errorf("remaining = %v, want -10", b.Remaining)
	}
	if b.Active {
		t.Error("overspent budget should be complete")
	}
	if b.Overspent() != 10 {
		t.Errorf("Overspent() = %v, want 10", b.Overspent())
	}
	if res.Round != 2 {
		t.Errorf("round = %d, want 2", res.Round)
	}

	if _, err := b.Spend(mustCollect(t, MethodEven, 1, members, nil)); !errors.Is(err, ErrBudgetClosed) {
		t.Errorf("spend after completion: expected ErrBudgetClosed, got %v", err)
	}
}

func TestBudgetExhausted(t *testing.T) {
	b, _ := NewBudget(0.3)
	members := []string{"Alice"}

	for _, amount := range []float64{0.1, 0.1} {
		if _, err := b.Spend(mustCollect(t, MethodEven, amount, members, nil)); err != nil {
			t.Fatalf("spend error = %v", err)
		}
	}
	res, err := b.Spend(mustCollect(t, MethodEven, 0.1, members, nil))
	if err != nil {
		t.Fatalf("spend error = %v", err)
	}
	if res.Status != BudgetExhausted {
		t.Errorf("status = %s, want exhausted", res.Status)
	}
	if b.Remaining != 0 || b.Active {
		t.Errorf("remaining=%v active=%v, want 0/false", b.Remaining, b.Active)
	}
}

func TestBudgetRejectedSpendLeavesRemaining(t *testing.T) {
	b, _ := NewBudget(100)
	members := []string{"Alice", "Bob", "Carol"}

	_, err := b.Spend(mustCollect(t, MethodFixed, 50, members, []float64{10, 10, 10}))
	v, ok := AsValidation(err)
	if !ok || v.Kind != Insufficient {
		t.Fatalf("expected Insufficient, got %v", err)
	}
	if b.Remaining != 100 || b.Round != 0 {
		t.Errorf("remaining=%v round=%d, want 100/0", b.Remaining, b.Round)
	}
	if b.staged == nil {
		t.Error("rejected inputs should stay staged for correction")
	}

	res, err := b.Spend(mustCollect(t, MethodPercentage, 50, members, []float64{50, 25, 25}))
	if err != nil {
		t.Fatalf("spend error = %v", err)
	}
	want := []float64{25, 12.5, 12.5}
	for i, s := range res.Split.Shares {
		if math.Abs(s.Amount-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", s.Member, s.Amount, want[i])
		}
	}
}

func TestBudgetClearsStagedBetweenRounds(t *testing.T) {
	b, _ := NewBudget(100)
	if err := b.Stage(mustCollect(t, MethodEven, 10, []string{"Alice"}, nil)); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if _, err := b.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if b.staged != nil {
		t.Error("staged inputs should be cleared after a round")
	}
	if _, err := b.Commit(); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("expected ErrNothingStaged, got %v", err)
	}
}

func TestBudgetDeclare(t *testing.T) {
	tests := []struct {
		name    string
		set     float64
		wantErr error
	}{
		{"positive", 50, nil},
		{"zero", 0, ErrInvalidBudget},
		{"negative", -5, ErrInvalidBudget},
		{"nan", math.NaN(), ErrInvalidBudget},
		{"inf", math.Inf(1), ErrInvalidBudget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBudget(tt.set)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewBudget(%v) error = %v, want %v", tt.set, err, tt.wantErr)
			}
		})
	}

	b, _ := NewBudget(100)
	if err := b.Declare(200); err != nil {
		t.Errorf("redeclare before spending: %v", err)
	}
	if _, err := b.Spend(mustCollect(t, MethodEven, 10, []string{"Alice"}, nil)); err != nil {
		t.Fatal(err)
	}
	if err := b.Declare(300); !errors.Is(err, ErrBudgetInProgress) {
		t.Errorf("expected ErrBudgetInProgress, got %v", err)
	}
}

func TestBudgetReset(t *testing.T) {
	b, _ := NewBudget(100)
	_ = b.Stage(mustCollect(t, MethodEven, 10, []string{"Alice"}, nil))
	b.Reset()

	if b.Set != 0 || b.Remaining != 0 || b.Active || b.Round != 0 || b.staged != nil {
		t.Errorf("Reset() left state behind: %+v", b)
	}
	if err := b.Stage(mustCollect(t, MethodEven, 10, []string{"Alice"}, nil)); !errors.Is(err, ErrBudgetClosed) {
		t.Errorf("expected ErrBudgetClosed after reset, got %v", err)
	}
	if err := b.Declare(20); err != nil {
		t.Errorf("Declare() after reset error = %v", err)
	}
}

func TestCollect(t *testing.T) {
	tests := []struct {
		name    string
		method  Method
		members []string
		inputs  []float64
		wantErr error
	}{
		{"even ignores inputs", MethodEven, []string{"A"}, []float64{1, 2}, nil},
		{"no members", MethodEven, nil, nil, ErrNoMembers},
		{"count mismatch", MethodFixed, []string{"A", "B"}, []float64{1}, ErrInputCount},
		{"unknown method", Method("weighted"), []string{"A"}, nil, ErrUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.method, 10, tt.members, tt.inputs)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Collect() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	members := []string{"Alice", "Bob"}
	inputs := []float64{60, 40}
	p := mustCollect(t, MethodPercentage, 10, members, inputs)
	members[0] = "Mallory"
	inputs[0] = 0
	res, err := p.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if res.Shares[0].Member != "Alice" || res.Shares[0].Amount != 6 {
		t.Errorf("pending inputs were not copied: %+v", res.Shares[0])
	}
	if res.Entered != 100 {
		t.Errorf("Entered = %v, want 100", res.Entered)
	}
}

func TestCollectRejectsNonFiniteAmounts(t *testing.T) {
	members := []string{"A", "B"}
	tests := []struct {
		name   string
		method Method
		total  float64
		inputs []float64
	}{
		{"NaN total", MethodEven, math.NaN(), nil},
		{"infinite total", MethodEven, math.Inf(1), nil},
		{"negative total", MethodEven, -1, nil},
		{"NaN percentage", MethodPercentage, 90, []float64{math.NaN(), 100}},
		{"infinite contribution", MethodFixed, 90, []float64{math.Inf(1), 0}},
		{"negative contribution", MethodFixed, 90, []float64{100, -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.method, tt.total, members, tt.inputs)
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("Collect() error = %v, want %v", err, ErrInvalidAmount)
			}
		})
	}
}
