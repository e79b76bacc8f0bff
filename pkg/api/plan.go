package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// PlanServiceName is the fully-qualified name of the PlanService.
const PlanServiceName = "splitlah.v1.PlanService"

// Procedure paths, used for routing and in interceptors.
const (
	PlanServiceListPlansProcedure  = "/splitlah.v1.PlanService/ListPlans"
	PlanServiceGetPlanProcedure    = "/splitlah.v1.PlanService/GetPlan"
	PlanServiceUpdatePlanProcedure = "/splitlah.v1.PlanService/UpdatePlan"
)

type ListPlansRequest struct{}

type ListPlansResponse struct {
	Plans []Plan `json:"plans"`
}

type GetPlanRequest struct{}

type GetPlanResponse struct {
	Plan     Plan    `json:"plan"`
	Duration string  `json:"duration"`
	Price    float64 `json:"price"`
}

type UpdatePlanRequest struct {
	PlanType     string `json:"planType" validate:"required"`
	PlanDuration string `json:"planDuration" validate:"required,oneof=Monthly Yearly"`
}

type UpdatePlanResponse struct {
	User User `json:"user"`
}

// PlanServiceHandler is implemented by the server.
// Every method needs a bearer token.
type PlanServiceHandler interface {
	// ListPlans returns the plan catalogue.
	ListPlans(context.Context, *connect.Request[ListPlansRequest]) (*connect.Response[ListPlansResponse], error)
	// GetPlan returns the caller's plan and what it costs.
	GetPlan(context.Context, *connect.Request[GetPlanRequest]) (*connect.Response[GetPlanResponse], error)
	// UpdatePlan switches the caller's plan.
	UpdatePlan(context.Context, *connect.Request[UpdatePlanRequest]) (*connect.Response[UpdatePlanResponse], error)
}

// NewPlanServiceHandler builds an HTTP handler serving every PlanService procedure.
// It returns the path prefix to mount it on.
func NewPlanServiceHandler(svc PlanServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	options := handlerOptions(opts)
	return mount(PlanServiceName, map[string]http.Handler{
		PlanServiceListPlansProcedure:  connect.NewUnaryHandler(PlanServiceListPlansProcedure, svc.ListPlans, options),
		PlanServiceGetPlanProcedure:    connect.NewUnaryHandler(PlanServiceGetPlanProcedure, svc.GetPlan, options),
		PlanServiceUpdatePlanProcedure: connect.NewUnaryHandler(PlanServiceUpdatePlanProcedure, svc.UpdatePlan, options),
	})
}

// PlanServiceClient calls a remote PlanService.
type PlanServiceClient interface {
	ListPlans(context.Context, *connect.Request[ListPlansRequest]) (*connect.Response[ListPlansResponse], error)
	GetPlan(context.Context, *connect.Request[GetPlanRequest]) (*connect.Response[GetPlanResponse], error)
	UpdatePlan(context.Context, *connect.Request[UpdatePlanRequest]) (*connect.Response[UpdatePlanResponse], error)
}

// NewPlanServiceClient creates a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewPlanServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PlanServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	options := clientOptions(opts)
	return &planServiceClient{
		listPlans:  connect.NewClient[ListPlansRequest, ListPlansResponse](httpClient, baseURL+PlanServiceListPlansProcedure, options),
		getPlan:    connect.NewClient[GetPlanRequest, GetPlanResponse](httpClient, baseURL+PlanServiceGetPlanProcedure, options),
		updatePlan: connect.NewClient[UpdatePlanRequest, UpdatePlanResponse](httpClient, baseURL+PlanServiceUpdatePlanProcedure, options),
	}
}

type planServiceClient struct {
	listPlans  *connect.Client[ListPlansRequest, ListPlansResponse]
	getPlan    *connect.Client[GetPlanRequest, GetPlanResponse]
	updatePlan *connect.Client[UpdatePlanRequest, UpdatePlanResponse]
}

func (c *planServiceClient) ListPlans(ctx context.Context, req *connect.Request[ListPlansRequest]) (*connect.Response[ListPlansResponse], error) {
	return c.listPlans.CallUnary(ctx, req)
}

func (c *planServiceClient) GetPlan(ctx context.Context, req *connect.Request[GetPlanRequest]) (*connect.Response[GetPlanResponse], error) {
	return c.getPlan.CallUnary(ctx, req)
}

func (c *planServiceClient) UpdatePlan(ctx context.Context, req *connect.Request[UpdatePlanRequest]) (*connect.Response[UpdatePlanResponse], error) {
	return c.updatePlan.CallUnary(ctx, req)
}

// UnimplementedPlanServiceHandler returns CodeUnimplemented from every method.
type UnimplementedPlanServiceHandler struct{}

func (UnimplementedPlanServiceHandler) ListPlans(context.Context, *connect.Request[ListPlansRequest]) (*connect.Response[ListPlansResponse], error) {
	return nil, unimplemented(PlanServiceListPlansProcedure)
}

func (UnimplementedPlanServiceHandler) GetPlan(context.Context, *connect.Request[GetPlanRequest]) (*connect.Response[GetPlanResponse], error) {
	return nil, unimplemented(PlanServiceGetPlanProcedure)
}

func (UnimplementedPlanServiceHandler) UpdatePlan(context.Context, *connect.Request[UpdatePlanRequest]) (*connect.Response[UpdatePlanResponse], error) {
	return nil, unimplemented(PlanServiceUpdatePlanProcedure)
}
