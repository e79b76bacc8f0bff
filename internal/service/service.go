// Package service implements the Connect services declared in pkg/api on
// top of the account store, the split engine and the session manager.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/calculator"
	"github.com/mmynk/splitlah/internal/middleware"
	"github.com/mmynk/splitlah/internal/models"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/pkg/api"
)

var (
	errNoSession  = errors.New("no active session")
	errPlanDenied = errors.New("not available on your plan")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkRequest runs the struct tag rules on an incoming message.
func checkRequest(msg any) error {
	err := validate.Struct(msg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(parts, "; ")))
	}
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// currentSession returns the session attached by the auth interceptor.
func currentSession(ctx context.Context) (*session.Session, error) {
	s := middleware.GetSession(ctx)
	if s == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, errNoSession)
	}
	return s, nil
}

// requireFeature rejects the call when the session's plan lacks f.
func requireFeature(s *session.Session, f models.Feature) error {
	plan := s.Snapshot().PlanType
	if !plan.Allows(f) {
		return connect.NewError(connect.CodePermissionDenied, fmt.Errorf("%s: %w (%s)", f, errPlanDenied, plan))
	}
	return nil
}

// accountError maps account store errors onto Connect codes.
func accountError(err error) error {
	switch {
	case errors.Is(err, account.ErrAlreadyExists), errors.Is(err, account.ErrGroupExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, account.ErrAuthFailure):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, account.ErrNotFound), errors.Is(err, account.ErrGroupNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, account.ErrInvalidInput), errors.Is(err, account.ErrInvalidPlan),
		errors.Is(err, account.ErrEmptyGroup), errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, account.ErrGroupLimit):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	// ErrInvariantViolation and storage failures land here.
	return connect.NewError(connect.CodeInternal, err)
}

// engineError maps split engine errors that are not validation outcomes.
func engineError(err error) error {
	switch {
	case errors.Is(err, calculator.ErrNoMembers), errors.Is(err, calculator.ErrInputCount),
		errors.Is(err, calculator.ErrUnknownMethod), errors.Is(err, calculator.ErrInvalidRate),
		errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrInvalidBudget), errors.Is(err, calculator.ErrInvalidSpend):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, calculator.ErrBudgetClosed), errors.Is(err, calculator.ErrBudgetInProgress),
		errors.Is(err, calculator.ErrNothingStaged), errors.Is(err, session.ErrNoBudget):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		Username:     u.Username,
		PlanType:     string(u.PlanType),
		PlanDuration: string(u.PlanDuration),
		Groups:       toAPIGroups(u.Groups),
	}
}

func toAPIGroups(groups map[string][]string) []api.Group {
	sorted := models.SortedGroups(groups)
	out := make([]api.Group, len(sorted))
	for i, g := range sorted {
		out[i] = api.Group{Name: g.Name, Members: g.Members}
	}
	return out
}

func toAPIPlan(p models.Plan) api.Plan {
	features := make([]string, len(p.Features))
	for i, f := range p.Features {
		features[i] = string(f)
	}
	maxGroups := p.MaxGroups
	if p.Type.IsPremium() {
		maxGroups = 0
	}
	return api.Plan{
		Type:         string(p.Type),
		MonthlyPrice: p.MonthlyPrice,
		YearlyPrice:  p.YearlyPrice,
		Features:     features,
		MaxGroups:    maxGroups,
		Premium:      p.Type.IsPremium(),
	}
}

func toAPIBudget(b *calculator.Budget) api.BudgetState {
	if b == nil {
		return api.BudgetState{}
	}
	return api.BudgetState{
		Set:       b.Set,
		Remaining: b.Remaining,
		Active:    b.Active,
		Round:     b.Round,
		Overspent: b.Overspent(),
	}
}
