package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitlah/pkg/api"
)

func TestListPlans(t *testing.T) {
	e := setupTestServer(t)
	token := e.signupAndLogin(t, "alice")

	resp, err := e.plans.ListPlans(context.Background(), authed(token, &api.ListPlansRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Plans, 5)

	basic := resp.Msg.Plans[0]
	assert.Equal(t, "Basic", basic.Type)
	assert.False(t, basic.Premium)
	assert.Equal(t, 5, basic.MaxGroups)
	assert.NotContains(t, basic.Features, "budget_split")

	solo := resp.Msg.Plans[1]
	assert.True(t, solo.Premium)
	assert.Zero(t, solo.MaxGroups)
	assert.Equal(t, 2.99, solo.MonthlyPrice)
}

func TestUpdatePlan(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	token := e.signupAndLogin(t, "alice")

	got, err := e.plans.GetPlan(ctx, authed(token, &api.GetPlanRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "Basic", got.Msg.Plan.Type)
	assert.Zero(t, got.Msg.Price)

	resp, err := e.plans.UpdatePlan(ctx, authed(token, &api.UpdatePlanRequest{PlanType: "Premium Family", PlanDuration: "Yearly"}))
	require.NoError(t, err)
	assert.Equal(t, "Premium Family", resp.Msg.User.PlanType)
	assert.Equal(t, "Yearly", resp.Msg.User.PlanDuration)

	got, err = e.plans.GetPlan(ctx, authed(token, &api.GetPlanRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "Premium Family", got.Msg.Plan.Type)
	assert.Equal(t, "Yearly", got.Msg.Duration)
	assert.Equal(t, 129.90, got.Msg.Price)

	// the stored record changed too
	user, err := e.accounts.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Premium Family", string(user.PlanType))
}

func TestUpdatePlanInvalid(t *testing.T) {
	e := setupTestServer(t)
	token := e.signupAndLogin(t, "alice")

	tests := []struct {
		name string
		req  *api.UpdatePlanRequest
	}{
		{"unknown type", &api.UpdatePlanRequest{PlanType: "Gold", PlanDuration: "Monthly"}},
		{"unknown duration", &api.UpdatePlanRequest{PlanType: "Basic", PlanDuration: "Weekly"}},
		{"empty", &api.UpdatePlanRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.plans.UpdatePlan(context.Background(), authed(token, tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestUpdatePlanReachesOtherSessions(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()
	phone := e.signupAndLogin(t, "alice")

	laptop, err := e.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Username: "alice", Password: "pw-alice"}))
	require.NoError(t, err)

	upgrade(t, e, phone)

	_, err = e.split.StartBudget(ctx, authed(laptop.Msg.Token, &api.StartBudgetRequest{Amount: 10}))
	require.NoError(t, err)
}
