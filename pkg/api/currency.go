package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// CurrencyServiceName is the fully-qualified name of the CurrencyService.
const CurrencyServiceName = "splitlah.v1.CurrencyService"

// Procedure paths, used for routing and in interceptors.
const (
	CurrencyServiceListCurrenciesProcedure = "/splitlah.v1.CurrencyService/ListCurrencies"
	CurrencyServiceGetRateProcedure        = "/splitlah.v1.CurrencyService/GetRate"
)

type ListCurrenciesRequest struct{}

type ListCurrenciesResponse struct {
	Base       string     `json:"base"`
	Source     string     `json:"source"`
	FetchedAt  int64      `json:"fetchedAt"`
	Currencies []Currency `json:"currencies"`
}

type GetRateRequest struct {
	From string `json:"from" validate:"required,len=3,alpha"`
	To   string `json:"to" validate:"required,len=3,alpha"`
}

type GetRateResponse struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`
}

// CurrencyServiceHandler is implemented by the server.
// Both methods are public.
type CurrencyServiceHandler interface {
	// ListCurrencies returns the current rate table.
	ListCurrencies(context.Context, *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error)
	// GetRate returns the cross rate between two currencies.
	GetRate(context.Context, *connect.Request[GetRateRequest]) (*connect.Response[GetRateResponse], error)
}

// NewCurrencyServiceHandler builds an HTTP handler serving every CurrencyService procedure.
// It returns the path prefix to mount it on.
func NewCurrencyServiceHandler(svc CurrencyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	options := handlerOptions(opts)
	return mount(CurrencyServiceName, map[string]http.Handler{
		CurrencyServiceListCurrenciesProcedure: connect.NewUnaryHandler(CurrencyServiceListCurrenciesProcedure, svc.ListCurrencies, options),
		CurrencyServiceGetRateProcedure:        connect.NewUnaryHandler(CurrencyServiceGetRateProcedure, svc.GetRate, options),
	})
}

// CurrencyServiceClient calls a remote CurrencyService.
type CurrencyServiceClient interface {
	ListCurrencies(context.Context, *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error)
	GetRate(context.Context, *connect.Request[GetRateRequest]) (*connect.Response[GetRateResponse], error)
}

// NewCurrencyServiceClient creates a client for the service at baseURL
// (e.g. http://localhost:8080).
func NewCurrencyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CurrencyServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	options := clientOptions(opts)
	return &currencyServiceClient{
		listCurrencies: connect.NewClient[ListCurrenciesRequest, ListCurrenciesResponse](httpClient, baseURL+CurrencyServiceListCurrenciesProcedure, options),
		getRate:        connect.NewClient[GetRateRequest, GetRateResponse](httpClient, baseURL+CurrencyServiceGetRateProcedure, options),
	}
}

type currencyServiceClient struct {
	listCurrencies *connect.Client[ListCurrenciesRequest, ListCurrenciesResponse]
	getRate        *connect.Client[GetRateRequest, GetRateResponse]
}

func (c *currencyServiceClient) ListCurrencies(ctx context.Context, req *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error) {
	return c.listCurrencies.CallUnary(ctx, req)
}

func (c *currencyServiceClient) GetRate(ctx context.Context, req *connect.Request[GetRateRequest]) (*connect.Response[GetRateResponse], error) {
	return c.getRate.CallUnary(ctx, req)
}

// UnimplementedCurrencyServiceHandler returns CodeUnimplemented from every method.
type UnimplementedCurrencyServiceHandler struct{}

func (UnimplementedCurrencyServiceHandler) ListCurrencies(context.Context, *connect.Request[ListCurrenciesRequest]) (*connect.Response[ListCurrenciesResponse], error) {
	return nil, unimplemented(CurrencyServiceListCurrenciesProcedure)
}

func (UnimplementedCurrencyServiceHandler) GetRate(context.Context, *connect.Request[GetRateRequest]) (*connect.Response[GetRateResponse], error) {
	return nil, unimplemented(CurrencyServiceGetRateProcedure)
}
