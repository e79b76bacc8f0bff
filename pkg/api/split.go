package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SplitServiceName is the fully-qualified name of the SplitService.
const SplitServiceName = "splitlah.v1.SplitService"

// Procedure paths, used for routing and in interceptors.
const (
	SplitServiceSetMembersProcedure   = "/splitlah.v1.SplitService/SetMembers"
	SplitServiceSplitProcedure        = "/splitlah.v1.SplitService/Split"
	SplitServiceConvertSplitProcedure = "/splitlah.v1.SplitService/ConvertSplit"
	SplitServiceStartBudgetProcedure  = "/splitlah.v1.SplitService/StartBudget"
	SplitServiceSpendBudgetProcedure  = "/splitlah.v1.SplitService/SpendBudget"
	SplitServiceGetBudgetProcedure    = "/splitlah.v1.SplitService/GetBudget"
	SplitServiceResetBudgetProcedure  = "/splitlah.v1.SplitService/ResetBudget"
	SplitServiceEndBudgetProcedure    = "/splitlah.v1.SplitService/EndBudget"
)

// MemberSelection picks who a split is for. Explicit members win, then a
// saved group, then the session's working list.
type MemberSelection struct {
	Members []string `json:"members,omitempty" validate:"omitempty,dive,required"`
	Group   string   `json:"group,omitempty"`
}

type SetMembersRequest struct {
	MemberSelection
}

type SetMembersResponse struct {
	Members []string `json:"members"`
}

type SplitRequest struct {
	MemberSelection
	// Method is even (default), percentage or fixed.
	Method string  `json:"method,omitempty" validate:"omitempty,oneof=even percentage fixed"`
	Total  float64 `json:"total" validate:"gte=0"`
	// Inputs holds one percentage or amount per member.
	Inputs []float64 `json:"inputs,omitempty" validate:"omitempty,dive,gte=0"`
	// Currency only affects how shares are displayed.
	Currency string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

// SplitResponse carries either a result or the reason there is none.
type SplitResponse struct {
	Result     *SplitResult `json:"result,omitempty"`
	Validation *Validation  `json:"validation,omitempty"`
}

type ConvertSplitRequest struct {
	MemberSelection
	Method string    `json:"method,omitempty" validate:"omitempty,oneof=even percentage fixed"`
	Total  float64   `json:"total" validate:"gte=0"`
	Inputs []float64 `json:"inputs,omitempty" validate:"omitempty,dive,gte=0"`
	From   string    `json:"from" validate:"required,len=3,alpha"`
	To     string    `json:"to" validate:"required,len=3,alpha"`
}

type ConvertSplitResponse struct {
	// Rate is units of To per one From.
	Rate           float64      `json:"rate"`
	ConvertedTotal float64      `json:"convertedTotal"`
	RateSource     string       `json:"rateSource"`
	Result         *SplitResult `json:"result,omitempty"`
	Validation     *Validation  `json:"validation,omitempty"`
}

type StartBudgetRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type StartBudgetResponse struct {
	Budget BudgetState `json:"budget"`
}

type SpendBudgetRequest struct {
	MemberSelection
	Method string    `json:"method,omitempty" validate:"omitempty,oneof=even percentage fixed"`
	Total  float64   `json:"total" validate:"gt=0"`
	Inputs []float64 `json:"inputs,omitempty" validate:"omitempty,dive,gte=0"`
}

type SpendBudgetResponse struct {
	Budget BudgetState `json:"budget"`
	// Status is continue, exhausted or overspent. Empty when the spend was
	// rejected.
	Status     string       `json:"status,omitempty"`
	Result     *SplitResult `json:"result,omitempty"`
	Validation *Validation  `json:"validation,omitempty"`
}

type GetBudgetRequest struct{}

type GetBudgetResponse struct {
	// Budget is nil when none was declared.
	Budget *BudgetState `json:"budget,omitempty"`
}

type ResetBudgetRequest struct{}

type ResetBudgetResponse struct {
	Budget BudgetState `json:"budget"`
}

type EndBudgetRequest struct{}

type EndBudgetResponse struct{}

// SplitServiceHandler is implemented by the server.
// Every method needs a bearer token. Budget and currency splits need a premium plan.
type SplitServiceHandler interface {
	// SetMembers sets the session's working member list.
	SetMembers(context.Context, *connect.Request[SetMembersRequest]) (*connect.Response[SetMembersResponse], error)
	// Split divides a bill among members.
	Split(context.Context, *connect.Request[SplitRequest]) (*connect.Response[SplitResponse], error)
	// ConvertSplit converts a bill to another currency, then splits it.
	ConvertSplit(context.Context, *connect.Request[ConvertSplitRequest]) (*connect.Response[ConvertSplitResponse], error)
	// StartBudget declares a budget for the session.
	StartBudget(context.Context, *connect.Request[StartBudgetRequest]) (*connect.Response[StartBudgetResponse], error)
	// SpendBudget splits one spend and takes it off the budget.
	SpendBudget(context.Context, *connect.Request[SpendBudgetRequest]) (*connect.Response[SpendBudgetResponse], error)
	// GetBudget returns the session's budget.
	GetBudget(context.Context, *connect.Request[GetBudgetRequest]) (*connect.Response[GetBudgetResponse], error)
	// ResetBudget zeroes the budget and clears staged inputs.
	ResetBudget(context.Context, *connect.Request[ResetBudgetRequest]) (*connect.Response[ResetBudgetResponse], error)
	// EndBudget drops the budget from the session.
	EndBudget(context.Context, *connect.Request[EndBudgetRequest]) (*connect.Response[EndBudgetResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler serving every SplitService procedure.
// It returns the path prefix to mount it on.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	options := handlerOptions(opts)
	return mount(SplitServiceName, map[string]http.Handler{
		SplitServiceSetMembersProcedure:   connect.NewUnaryHandler(SplitServiceSetMembersProcedure, svc.SetMembers, options),
		SplitServiceSplitProcedure:        connect.NewUnaryHandler(SplitServiceSplitProcedure, svc.Split, options),
		SplitServiceConvertSplitProcedure: connect.NewUnaryHandler(SplitServiceConvertSplitProcedure, svc.ConvertSplit, options),
		SplitServiceStartBudgetProcedure:  connect.NewUnaryHandler(SplitServiceStartBudgetProcedure, svc.StartBudget, options),
		SplitServiceSpendBudgetProcedure:  connect.NewUnaryHandler(SplitServiceSpendBudgetProcedure, svc.SpendBudget, options),
		SplitServiceGetBudgetProcedure:    connect.NewUnaryHandler(SplitServiceGetBudgetProcedure, svc.GetBudget, options),
		SplitServiceResetBudgetProcedure:  connect.NewUnaryHandler(SplitServiceResetBudgetProcedure, svc.ResetBudget, options),
		SplitServiceEndBudgetProcedure:    connect.NewUnaryHandler(SplitServiceEndBudgetProcedure, svc.EndBudget, options),
	})
}

// SplitServiceClient calls a remote SplitService.
type SplitServiceClient interface {
	SetMembers(context.Context, *connect.Request[SetMembersRequest]) (*connect.Response[SetMembersResponse], error)
	Split(context.Context, *connect.Request[SplitRequest]) (*connect.Response[SplitResponse], error)
	ConvertSplit(context.Context, *connect.Request[ConvertSplitRequest]) (*connect.Response[ConvertSplitResponse], error)
	StartBudget(context.Context, *connect.Request[StartBudgetRequest]) (*connect.Response[StartBudgetResponse], error)
	SpendBudget(context.Context, *connect.Request[SpendBudgetRequest]) (*connect.Response[SpendBudgetResponse], error)
	GetBudget(context.Context, *connect.Request[GetBudgetRequest]) (*connect.Response[GetBudgetResponse], error)
	ResetBudget(context.Context, *connect.Request[ResetBudgetRequest]) (*connect.Response[ResetBudgetResponse], error)
	EndBudget(context.Context, *connect.Request[EndBudgetRequest]) (*connect.Response[EndBudgetResponse], error)
}

// NewSplitServiceClient creates a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	options := clientOptions(opts)
	return &splitServiceClient{
		setMembers:   connect.NewClient[SetMembersRequest, SetMembersResponse](httpClient, baseURL+SplitServiceSetMembersProcedure, options),
		split:        connect.NewClient[SplitRequest, SplitResponse](httpClient, baseURL+SplitServiceSplitProcedure, options),
		convertSplit: connect.NewClient[ConvertSplitRequest, ConvertSplitResponse](httpClient, baseURL+SplitServiceConvertSplitProcedure, options),
		startBudget:  connect.NewClient[StartBudgetRequest, StartBudgetResponse](httpClient, baseURL+SplitServiceStartBudgetProcedure, options),
		spendBudget:  connect.NewClient[SpendBudgetRequest, SpendBudgetResponse](httpClient, baseURL+SplitServiceSpendBudgetProcedure, options),
		getBudget:    connect.NewClient[GetBudgetRequest, GetBudgetResponse](httpClient, baseURL+SplitServiceGetBudgetProcedure, options),
		resetBudget:  connect.NewClient[ResetBudgetRequest, ResetBudgetResponse](httpClient, baseURL+SplitServiceResetBudgetProcedure, options),
		endBudget:    connect.NewClient[EndBudgetRequest, EndBudgetResponse](httpClient, baseURL+SplitServiceEndBudgetProcedure, options),
	}
}

type splitServiceClient struct {
	setMembers   *connect.Client[SetMembersRequest, SetMembersResponse]
	split        *connect.Client[SplitRequest, SplitResponse]
	convertSplit *connect.Client[ConvertSplitRequest, ConvertSplitResponse]
	startBudget  *connect.Client[StartBudgetRequest, StartBudgetResponse]
	spendBudget  *connect.Client[SpendBudgetRequest, SpendBudgetResponse]
	getBudget    *connect.Client[GetBudgetRequest, GetBudgetResponse]
	resetBudget  *connect.Client[ResetBudgetRequest, ResetBudgetResponse]
	endBudget    *connect.Client[EndBudgetRequest, EndBudgetResponse]
}

func (c *splitServiceClient) SetMembers(ctx context.Context, req *connect.Request[SetMembersRequest]) (*connect.Response[SetMembersResponse], error) {
	return c.setMembers.CallUnary(ctx, req)
}

func (c *splitServiceClient) Split(ctx context.Context, req *connect.Request[SplitRequest]) (*connect.Response[SplitResponse], error) {
	return c.split.CallUnary(ctx, req)
}

func (c *splitServiceClient) ConvertSplit(ctx context.Context, req *connect.Request[ConvertSplitRequest]) (*connect.Response[ConvertSplitResponse], error) {
	return c.convertSplit.CallUnary(ctx, req)
}

func (c *splitServiceClient) StartBudget(ctx context.Context, req *connect.Request[StartBudgetRequest]) (*connect.Response[StartBudgetResponse], error) {
	return c.startBudget.CallUnary(ctx, req)
}

func (c *splitServiceClient) SpendBudget(ctx context.Context, req *connect.Request[SpendBudgetRequest]) (*connect.Response[SpendBudgetResponse], error) {
	return c.spendBudget.CallUnary(ctx, req)
}

func (c *splitServiceClient) GetBudget(ctx context.Context, req *connect.Request[GetBudgetRequest]) (*connect.Response[GetBudgetResponse], error) {
	return c.getBudget.CallUnary(ctx, req)
}

func (c *splitServiceClient) ResetBudget(ctx context.Context, req *connect.Request[ResetBudgetRequest]) (*connect.Response[ResetBudgetResponse], error) {
	return c.resetBudget.CallUnary(ctx, req)
}

func (c *splitServiceClient) EndBudget(ctx context.Context, req *connect.Request[EndBudgetRequest]) (*connect.Response[EndBudgetResponse], error) {
	return c.endBudget.CallUnary(ctx, req)
}

// UnimplementedSplitServiceHandler returns CodeUnimplemented from every method.
type UnimplementedSplitServiceHandler struct{}

func (UnimplementedSplitServiceHandler) SetMembers(context.Context, *connect.Request[SetMembersRequest]) (*connect.Response[SetMembersResponse], error) {
	return nil, unimplemented(SplitServiceSetMembersProcedure)
}

func (UnimplementedSplitServiceHandler) Split(context.Context, *connect.Request[SplitRequest]) (*connect.Response[SplitResponse], error) {
	return nil, unimplemented(SplitServiceSplitProcedure)
}

func (UnimplementedSplitServiceHandler) ConvertSplit(context.Context, *connect.Request[ConvertSplitRequest]) (*connect.Response[ConvertSplitResponse], error) {
	return nil, unimplemented(SplitServiceConvertSplitProcedure)
}

func (UnimplementedSplitServiceHandler) StartBudget(context.Context, *connect.Request[StartBudgetRequest]) (*connect.Response[StartBudgetResponse], error) {
	return nil, unimplemented(SplitServiceStartBudgetProcedure)
}

func (UnimplementedSplitServiceHandler) SpendBudget(context.Context, *connect.Request[SpendBudgetRequest]) (*connect.Response[SpendBudgetResponse], error) {
	return nil, unimplemented(SplitServiceSpendBudgetProcedure)
}

func (UnimplementedSplitServiceHandler) GetBudget(context.Context, *connect.Request[GetBudgetRequest]) (*connect.Response[GetBudgetResponse], error) {
	return nil, unimplemented(SplitServiceGetBudgetProcedure)
}

func (UnimplementedSplitServiceHandler) ResetBudget(context.Context, *connect.Request[ResetBudgetRequest]) (*connect.Response[ResetBudgetResponse], error) {
	return nil, unimplemented(SplitServiceResetBudgetProcedure)
}

func (UnimplementedSplitServiceHandler) EndBudget(context.Context, *connect.Request[EndBudgetRequest]) (*connect.Response[EndBudgetResponse], error) {
	return nil, unimplemented(SplitServiceEndBudgetProcedure)
}
