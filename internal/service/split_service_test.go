package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/Rhymond/go-money"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitlah/pkg/api"
)

func trio() api.MemberSelection {
	return api.MemberSelection{Members: []string{"Ann", "Ben", "Cat"}}
}

func TestSplit(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")

	tests := []struct {
		name   string
		req    *api.SplitRequest
		want   []float64
		method string
	}{
		{
			name:   "even",
			req:    &api.SplitRequest{MemberSelection: trio(), Total: 90},
			want:   []float64{30, 30, 30},
			method: "even",
		},
		{
			name:   "percentage",
			req:    &api.SplitRequest{MemberSelection: trio(), Method: "percentage", Total: 90, Inputs: []float64{50, 25, 25}},
			want:   []float64{45, 22.5, 22.5},
			method: "percentage",
		},
		{
			name:   "fixed",
			req:    &api.SplitRequest{MemberSelection: trio(), Method: "fixed", Total: 100, Inputs: []float64{50, 30, 20}},
			want:   []float64{50, 30, 20},
			method: "fixed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.split.Split(ctx, authed(token, tt.req))
			require.NoError(t, err)
			require.Nil(t, resp.Msg.Validation)
			require.NotNil(t, resp.Msg.Result)

			assert.Equal(t, tt.method, resp.Msg.Result.Method)
			require.Len(t, resp.Msg.Result.Shares, len(tt.want))
			for i, sh := range resp.Msg.Result.Shares {
				assert.Equal(t, trio().Members[i], sh.Member)
				assert.InDelta(t, tt.want[i], sh.Amount, 1e-9)
			}
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Splits.WithLabelValues("even", "ok")))
}

func TestSplitValidationIsAValue(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")

	tests := []struct {
		name    string
		req     *api.SplitRequest
		kind    string
		entered float64
		target  float64
	}{
		{
			name:    "fixed below bill",
			req:     &api.SplitRequest{MemberSelection: trio(), Method: "fixed", Total: 100, Inputs: []float64{30, 30, 30}},
			kind:    "insufficient",
			entered: 90,
			target:  100,
		},
		{
			name:    "fixed above bill",
			req:     &api.SplitRequest{MemberSelection: trio(), Method: "fixed", Total: 100, Inputs: []float64{50, 50, 1}},
			kind:    "exceeds",
			entered: 101,
			target:  100,
		},
		{
			name:    "percentages short",
			req:     &api.SplitRequest{MemberSelection: trio(), Method: "percentage", Total: 60, Inputs: []float64{30, 30, 30}},
			kind:    "invalid",
			entered: 90,
			target:  100,
		},
		{
			name:    "fixed left blank",
			req:     &api.SplitRequest{MemberSelection: trio(), Method: "fixed", Total: 100, Inputs: []float64{0, 0, 0}},
			kind:    "incomplete",
			entered: 0,
			target:  100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.split.Split(ctx, authed(token, tt.req))
			require.NoError(t, err)
			assert.Nil(t, resp.Msg.Result)
			require.NotNil(t, resp.Msg.Validation)
			assert.Equal(t, tt.kind, resp.Msg.Validation.Kind)
			assert.InDelta(t, tt.entered, resp.Msg.Validation.Entered, 1e-9)
			assert.InDelta(t, tt.target, resp.Msg.Validation.Target, 1e-9)
			assert.NotEmpty(t, resp.Msg.Validation.Message)
		})
	}
}

func TestSplitBadInput(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")

	tests := []struct {
		name string
		req  *api.SplitRequest
		code connect.Code
	}{
		{"unknown method", &api.SplitRequest{MemberSelection: trio(), Method: "weighted", Total: 10}, connect.CodeInvalidArgument},
		{"negative total", &api.SplitRequest{MemberSelection: trio(), Total: -1}, connect.CodeInvalidArgument},
		{"input count mismatch", &api.SplitRequest{MemberSelection: trio(), Method: "fixed", Total: 10, Inputs: []float64{10}}, connect.CodeInvalidArgument},
		{"no members anywhere", &api.SplitRequest{Total: 10}, connect.CodeInvalidArgument},
		{"missing group", &api.SplitRequest{MemberSelection: api.MemberSelection{Group: "ghosts"}, Total: 10}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.split.Split(ctx, authed(token, tt.req))
			assertCode(t, err, tt.code)
		})
	}
}

func TestSplitUsesGroupAndWorkingMembers(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")

	_, err := e.groups.SaveGroup(ctx, authed(token, &api.SaveGroupRequest{Name: "duo", Members: []string{"Xi", "Yu"}}))
	require.NoError(t, err)

	resp, err := e.split.Split(ctx, authed(token, &api.SplitRequest{
		MemberSelection: api.MemberSelection{Group: "duo"},
		Total:           50,
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Result.Shares, 2)
	assert.Equal(t, "Xi", resp.Msg.Result.Shares[0].Member)
	assert.InDelta(t, 25, resp.Msg.Result.Shares[1].Amount, 1e-9)

	set, err := e.split.SetMembers(ctx, authed(token, &api.SetMembersRequest{
		MemberSelection: api.MemberSelection{Members: []string{" Pat ", "Quinn"}},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pat", "Quinn"}, set.Msg.Members)

	resp, err = e.split.Split(ctx, authed(token, &api.SplitRequest{Total: 10}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Result.Shares, 2)
	assert.Equal(t, "Quinn", resp.Msg.Result.Shares[1].Member)
	assert.Equal(t, "5.00", resp.Msg.Result.Shares[1].Display)
}

func TestPremiumFeaturesAreGated(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")

	_, err := e.split.ConvertSplit(ctx, authed(token, &api.ConvertSplitRequest{
		MemberSelection: trio(), Total: 100, From: "USD", To: "MYR",
	}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = e.split.StartBudget(ctx, authed(token, &api.StartBudgetRequest{Amount: 100}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = e.split.SpendBudget(ctx, authed(token, &api.SpendBudgetRequest{MemberSelection: trio(), Total: 10}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestConvertSplit(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")
	upgrade(t, e, token)

	resp, err := e.split.ConvertSplit(ctx, authed(token, &api.ConvertSplitRequest{
		MemberSelection: api.MemberSelection{Members: []string{"Ann", "Ben"}},
		Total:           100,
		From:            "usd",
		To:              "myr",
	}))
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Msg.RateSource)
	assert.InDelta(t, 4.6, resp.Msg.Rate, 1e-9)
	assert.InDelta(t, 460, resp.Msg.ConvertedTotal, 1e-9)

	require.NotNil(t, resp.Msg.Result)
	assert.Equal(t, "MYR", resp.Msg.Result.Currency)
	for _, sh := range resp.Msg.Result.Shares {
		assert.InDelta(t, 230, sh.Amount, 1e-9)
		assert.Equal(t, money.New(23000, money.MYR).Display(), sh.Display)
	}

	_, err = e.split.ConvertSplit(ctx, authed(token, &api.ConvertSplitRequest{
		MemberSelection: trio(), Total: 100, From: "USD", To: "ZZZ",
	}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestBudgetRounds(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")
	upgrade(t, e, token)

	got, err := e.split.GetBudget(ctx, authed(token, &api.GetBudgetRequest{}))
	require.NoError(t, err)
	assert.Nil(t, got.Msg.Budget)

	_, err = e.split.SpendBudget(ctx, authed(token, &api.SpendBudgetRequest{MemberSelection: trio(), Total: 10}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	start, err := e.split.StartBudget(ctx, authed(token, &api.StartBudgetRequest{Amount: 100}))
	require.NoError(t, err)
	assert.Equal(t, api.BudgetState{Set: 100, Remaining: 100, Active: true}, start.Msg.Budget)

	first, err := e.split.SpendBudget(ctx, authed(token, &api.SpendBudgetRequest{MemberSelection: trio(), Total: 40}))
	require.NoError(t, err)
	assert.Equal(t, "continue", first.Msg.Status)
	assert.InDelta(t, 60, first.Msg.Budget.Remaining, 1e-9)
	assert.Equal(t, 1, first.Msg.Budget.Round)

	// a rejected round leaves the budget alone
	rejected, err := e.split.SpendBudget(ctx, authed(token, &api.SpendBudgetRequest{
		MemberSelection: trio(), Method: "fixed", Total: 30, Inputs: []float64{10, 10, 5},
	}))
	require.NoError(t, err)
	require.NotNil(t, rejected.Msg.Validation)
	assert.Equal(t, "insufficient", rejected.Msg.Validation.Kind)
	assert.InDelta(t, 60, rejected.Msg.Budget.Remaining, 1e-9)
	assert.Empty(t, rejected.Msg.Status)

	second, err := e.split.SpendBudget(ctx, authed(token, &api.SpendBudgetRequest{MemberSelection: trio(), Total: 70}))
	require.NoError(t, err)
	assert.Equal(t, "overspent", second.Msg.Status)
	assert.InDelta(t, -10, second.Msg.Budget.Remaining, 1e-9)
	assert.InDelta(t, 10, second.Msg.Budget.Overspent, 1e-9)
	assert.False(t, second.Msg.Budget.Active)
	assert.Equal(t, 2, second.Msg.Budget.Round)

	_, err = e.split.SpendBudget(ctx, authed(token, &api.SpendBudgetRequest{MemberSelection: trio(), Total: 5}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.BudgetRounds.WithLabelValues("overspent")))

	reset, err := e.split.ResetBudget(ctx, authed(token, &api.ResetBudgetRequest{}))
	require.NoError(t, err)
	assert.Equal(t, api.BudgetState{}, reset.Msg.Budget)

	// a reset budget can be declared again
	_, err = e.split.StartBudget(ctx, authed(token, &api.StartBudgetRequest{Amount: 20}))
	require.NoError(t, err)

	_, err = e.split.EndBudget(ctx, authed(token, &api.EndBudgetRequest{}))
	require.NoError(t, err)
	got, err = e.split.GetBudget(ctx, authed(token, &api.GetBudgetRequest{}))
	require.NoError(t, err)
	assert.Nil(t, got.Msg.Budget)
}

func TestBudgetsAreScopedToSession(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	first := e.signupAndLogin(t, "alice")
	upgrade(t, e, first)

	second, err := e.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Username: "alice", Password: "pw-alice"}))
	require.NoError(t, err)

	_, err = e.split.StartBudget(ctx, authed(first, &api.StartBudgetRequest{Amount: 50}))
	require.NoError(t, err)

	got, err := e.split.GetBudget(ctx, authed(second.Msg.Token, &api.GetBudgetRequest{}))
	require.NoError(t, err)
	assert.Nil(t, got.Msg.Budget)
}
