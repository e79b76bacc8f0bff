package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitlah/internal/calculator"
	"github.com/mmynk/splitlah/internal/currency"
	"github.com/mmynk/splitlah/internal/metrics"
	"github.com/mmynk/splitlah/internal/models"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/pkg/api"
)

// RateSource provides exchange rates. *currency.Client satisfies it.
type RateSource interface {
	Rates(ctx context.Context) currency.Table
}

// SplitService implements the Connect SplitService
type SplitService struct {
	rates   RateSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewSplitService creates a new SplitService. m may be nil.
func NewSplitService(rates RateSource, logger *slog.Logger, m *metrics.Metrics) *SplitService {
	return &SplitService{rates: rates, logger: logger, metrics: m}
}

// SetMembers replaces the session's working member list, either with the
// given names or with a saved group.
func (s *SplitService) SetMembers(ctx context.Context, req *connect.Request[api.SetMembersRequest]) (*connect.Response[api.SetMembersResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	sel := req.Msg.MemberSelection
	if len(cleanMembers(sel.Members)) == 0 && sel.Group == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrNoMembers)
	}

	var members []string
	err = sess.Do(func(ss *session.Session) error {
		members, err = resolveMembers(ss.Groups, nil, sel)
		if err != nil {
			return err
		}
		ss.CurrentMembers = members
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Members set", "username", sess.Username, "members_count", len(members), "group", sel.Group)
	return connect.NewResponse(&api.SetMembersResponse{Members: members}), nil
}

// Split divides a bill evenly, by percentage or by fixed amounts. Rejected
// inputs come back in the response's validation field, not as an error.
func (s *SplitService) Split(ctx context.Context, req *connect.Request[api.SplitRequest]) (*connect.Response[api.SplitResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Split request received",
		"username", sess.Username,
		"method", req.Msg.Method,
		"total", req.Msg.Total,
		"members_count", len(req.Msg.Members),
	)

	if err := requireFeature(sess, models.FeatureNormalSplit); err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	pending, err := s.collect(sess, req.Msg.MemberSelection, req.Msg.Method, req.Msg.Total, req.Msg.Inputs)
	if err != nil {
		return nil, err
	}

	resp := &api.SplitResponse{}
	resp.Result, resp.Validation, err = s.finalize(pending, req.Msg.Currency)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// ConvertSplit converts the total between currencies with the current rate
// table and splits the converted amount.
func (s *SplitService) ConvertSplit(ctx context.Context, req *connect.Request[api.ConvertSplitRequest]) (*connect.Response[api.ConvertSplitResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ConvertSplit request received",
		"username", sess.Username,
		"from", req.Msg.From,
		"to", req.Msg.To,
		"total", req.Msg.Total,
	)

	if err := requireFeature(sess, models.FeatureCurrencySplit); err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	table := s.rates.Rates(ctx)
	fromRate, toRate, err := lookupPair(table, req.Msg.From, req.Msg.To)
	if err != nil {
		return nil, err
	}

	converted, err := calculator.Convert(req.Msg.Total, fromRate, toRate)
	if err != nil {
		return nil, engineError(err)
	}
	rate, _ := calculator.CrossRate(fromRate, toRate)

	pending, err := s.collect(sess, req.Msg.MemberSelection, req.Msg.Method, converted, req.Msg.Inputs)
	if err != nil {
		return nil, err
	}

	resp := &api.ConvertSplitResponse{
		Rate:           rate,
		ConvertedTotal: converted,
		RateSource:     string(table.Source),
	}
	resp.Result, resp.Validation, err = s.finalize(pending, req.Msg.To)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(resp), nil
}

// StartBudget declares a budget for the session.
func (s *SplitService) StartBudget(ctx context.Context, req *connect.Request[api.StartBudgetRequest]) (*connect.Response[api.StartBudgetResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("StartBudget request received", "username", sess.Username, "amount", req.Msg.Amount)

	if err := requireFeature(sess, models.FeatureBudgetSplit); err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	var state api.BudgetState
	err = sess.Do(func(ss *session.Session) error {
		if err := ss.DeclareBudget(req.Msg.Amount); err != nil {
			return err
		}
		state = toAPIBudget(ss.Budget)
		return nil
	})
	if err != nil {
		return nil, engineError(err)
	}
	return connect.NewResponse(&api.StartBudgetResponse{Budget: state}), nil
}

// SpendBudget splits one spend and, when the split is accepted, takes it off
// the remaining budget.
func (s *SplitService) SpendBudget(ctx context.Context, req *connect.Request[api.SpendBudgetRequest]) (*connect.Response[api.SpendBudgetResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("SpendBudget request received",
		"username", sess.Username,
		"method", req.Msg.Method,
		"total", req.Msg.Total,
	)

	if err := requireFeature(sess, models.FeatureBudgetSplit); err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	pending, err := s.collect(sess, req.Msg.MemberSelection, req.Msg.Method, req.Msg.Total, req.Msg.Inputs)
	if err != nil {
		return nil, err
	}

	resp := &api.SpendBudgetResponse{}
	var spent *calculator.SpendResult
	err = sess.Do(func(ss *session.Session) error {
		if ss.Budget == nil {
			return session.ErrNoBudget
		}
		res, err := ss.Budget.Spend(pending)
		resp.Budget = toAPIBudget(ss.Budget)
		if v, ok := calculator.AsValidation(err); ok {
			resp.Validation = toAPIValidation(v)
			return nil
		}
		if err != nil {
			return err
		}
		spent = res
		ss.CurrentMembers = pending.Members
		return nil
	})
	if err != nil {
		return nil, engineError(err)
	}

	if resp.Validation != nil {
		s.countSplit(pending.Method, resp.Validation.Kind)
		return connect.NewResponse(resp), nil
	}

	s.countSplit(pending.Method, "ok")
	if s.metrics != nil {
		s.metrics.BudgetRounds.WithLabelValues(string(spent.Status)).Inc()
	}
	if spent.Status == calculator.BudgetOverspent {
		s.logger.Warn("Budget overspent", "username", sess.Username, "over_by", -spent.Remaining)
	}

	resp.Status = string(spent.Status)
	resp.Result = toAPIResult(spent.Split, "")
	return connect.NewResponse(resp), nil
}

// GetBudget returns the session's budget, if any.
func (s *SplitService) GetBudget(ctx context.Context, req *connect.Request[api.GetBudgetRequest]) (*connect.Response[api.GetBudgetResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	resp := &api.GetBudgetResponse{}
	if b := sess.Snapshot().Budget; b != nil {
		state := toAPIBudget(b)
		resp.Budget = &state
	}
	return connect.NewResponse(resp), nil
}

// ResetBudget zeroes the budget and clears staged inputs. The budget stays
// in the session, inactive, until declared again.
func (s *SplitService) ResetBudget(ctx context.Context, req *connect.Request[api.ResetBudgetRequest]) (*connect.Response[api.ResetBudgetResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ResetBudget request received", "username", sess.Username)

	var state api.BudgetState
	_ = sess.Do(func(ss *session.Session) error {
		ss.ResetBudget()
		state = toAPIBudget(ss.Budget)
		return nil
	})
	return connect.NewResponse(&api.ResetBudgetResponse{Budget: state}), nil
}

// EndBudget removes the budget from the session entirely.
func (s *SplitService) EndBudget(ctx context.Context, req *connect.Request[api.EndBudgetRequest]) (*connect.Response[api.EndBudgetResponse], error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("EndBudget request received", "username", sess.Username)

	_ = sess.Do(func(ss *session.Session) error {
		ss.ResetBudget()
		ss.Budget = nil
		return nil
	})
	return connect.NewResponse(&api.EndBudgetResponse{}), nil
}

// collect resolves members against the session and runs the shape checks.
func (s *SplitService) collect(sess *session.Session, sel api.MemberSelection, method string, total float64, inputs []float64) (*calculator.Pending, error) {
	m, err := calculator.ParseMethod(method)
	if err != nil {
		return nil, engineError(err)
	}

	snap := sess.Snapshot()
	members, err := resolveMembers(snap.Groups, snap.CurrentMembers, sel)
	if err != nil {
		return nil, err
	}

	pending, err := calculator.Collect(m, total, members, inputs)
	if err != nil {
		return nil, engineError(err)
	}
	return pending, nil
}

// finalize runs a pending split, turning a validation outcome into a value.
func (s *SplitService) finalize(p *calculator.Pending, code string) (*api.SplitResult, *api.Validation, error) {
	result, err := p.Finalize()
	if v, ok := calculator.AsValidation(err); ok {
		s.countSplit(p.Method, string(v.Kind))
		return nil, toAPIValidation(v), nil
	}
	if err != nil {
		return nil, nil, engineError(err)
	}
	s.countSplit(p.Method, "ok")
	return toAPIResult(result, code), nil, nil
}

func (s *SplitService) countSplit(method calculator.Method, result string) {
	if s.metrics != nil {
		s.metrics.Splits.WithLabelValues(string(method), result).Inc()
	}
}

// resolveMembers picks explicit members first, then a saved group, then the
// working list. Empty names are dropped.
func resolveMembers(groups map[string][]string, current []string, sel api.MemberSelection) ([]string, error) {
	if members := cleanMembers(sel.Members); len(members) > 0 {
		return members, nil
	}
	if sel.Group != "" {
		members, ok := groups[strings.TrimSpace(sel.Group)]
		if !ok {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("group %q not found", sel.Group))
		}
		if members = cleanMembers(members); len(members) > 0 {
			return members, nil
		}
	}
	if members := cleanMembers(current); len(members) > 0 {
		return members, nil
	}
	return nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrNoMembers)
}

func cleanMembers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func lookupPair(table currency.Table, from, to string) (float64, float64, error) {
	fromRate, ok := table.Rates.Rate(from)
	if !ok {
		return 0, 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("no rate for %s", strings.ToUpper(from)))
	}
	toRate, ok := table.Rates.Rate(to)
	if !ok {
		return 0, 0, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("no rate for %s", strings.ToUpper(to)))
	}
	return fromRate, toRate, nil
}

func toAPIResult(r *calculator.Result, code string) *api.SplitResult {
	code = strings.ToUpper(code)
	shares := make([]api.Share, len(r.Shares))
	for i, sh := range r.Shares {
		display := fmt.Sprintf("%.2f", currency.Round(sh.Amount))
		if code != "" {
			display = currency.Display(sh.Amount, code)
		}
		shares[i] = api.Share{Member: sh.Member, Amount: sh.Amount, Display: display}
	}
	return &api.SplitResult{
		Method:   string(r.Method),
		Total:    r.Total,
		Entered:  r.Entered,
		Currency: code,
		Shares:   shares,
	}
}

func toAPIValidation(v *calculator.ValidationError) *api.Validation {
	return &api.Validation{
		Kind:    string(v.Kind),
		Entered: v.Entered,
		Target:  v.Target,
		Message: v.Error(),
	}
}
