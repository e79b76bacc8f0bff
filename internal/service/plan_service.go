package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/models"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/pkg/api"
)

// PlanService implements the Connect PlanService.
type PlanService struct {
	accounts *account.Store
	sessions *session.Manager
	logger   *slog.Logger
}

// NewPlanService creates a new PlanService. A plan change is applied to
// every live session of the user.
func NewPlanService(accounts *account.Store, sessions *session.Manager, logger *slog.Logger) *PlanService {
	return &PlanService{accounts: accounts, sessions: sessions, logger: logger}
}

// ListPlans returns the plan catalogue.
func (s *PlanService) ListPlans(ctx context.Context, req *connect.Request[api.ListPlansRequest]) (*connect.Response[api.ListPlansResponse], error) {
	plans := make([]api.Plan, len(models.Plans))
	for i, p := range models.Plans {
		plans[i] = toAPIPlan(p)
	}
	return connect.NewResponse(&api.ListPlansResponse{Plans: plans}), nil
}

// GetPlan returns the caller's plan with its price for the chosen cycle.
func (s *PlanService) GetPlan(ctx context.Context, req *connect.Request[api.GetPlanRequest]) (*connect.Response[api.GetPlanResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	snap := sess.Snapshot()
	plan, ok := models.LookupPlan(snap.PlanType)
	if !ok {
		// a record edited by hand can carry an unknown plan; treat it as Basic
		plan, _ = models.LookupPlan(models.PlanBasic)
	}

	return connect.NewResponse(&api.GetPlanResponse{
		Plan:     toAPIPlan(plan),
		Duration: string(snap.PlanDuration),
		Price:    plan.Price(snap.PlanDuration),
	}), nil
}

// UpdatePlan persists a new plan selection and applies it to the session.
func (s *PlanService) UpdatePlan(ctx context.Context, req *connect.Request[api.UpdatePlanRequest]) (*connect.Response[api.UpdatePlanResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdatePlan request received",
		"username", sess.Username,
		"plan_type", req.Msg.PlanType,
		"plan_duration", req.Msg.PlanDuration,
	)

	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	planType := models.PlanType(req.Msg.PlanType)
	if _, ok := models.LookupPlan(planType); !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %q", account.ErrInvalidPlan, req.Msg.PlanType))
	}

	if err := s.accounts.UpdatePlan(ctx, sess.Username, planType, models.PlanDuration(req.Msg.PlanDuration)); err != nil {
		s.logger.Error("UpdatePlan failed", "username", sess.Username, "error", err)
		return nil, accountError(err)
	}

	user, err := s.accounts.Get(ctx, sess.Username)
	if err != nil {
		return nil, accountError(err)
	}
	sess.Refresh(user)
	for _, other := range s.sessions.ForUser(user.Username) {
		if other != sess {
			other.Refresh(user)
		}
	}

	s.logger.Info("Plan updated", "username", user.Username, "plan_type", user.PlanType, "plan_duration", user.PlanDuration)
	return connect.NewResponse(&api.UpdatePlanResponse{User: toAPIUser(user)}), nil
}
