package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitlah/pkg/api"
)

func TestListCurrencies(t *testing.T) {
	e := setupTestServer(t)

	// no token needed
	resp, err := e.currency.ListCurrencies(context.Background(), connect.NewRequest(&api.ListCurrenciesRequest{}))
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Msg.Base)
	assert.Equal(t, "fallback", resp.Msg.Source)
	require.Len(t, resp.Msg.Currencies, 6)

	first := resp.Msg.Currencies[0]
	assert.Equal(t, api.Currency{Code: "EUR", Name: "Eurozone", Label: "EUR (Eurozone)", Rate: 0.91}, first)
}

func TestGetRate(t *testing.T) {
	e := setupTestServer(t)
	ctx := context.Background()

	resp, err := e.currency.GetRate(ctx, connect.NewRequest(&api.GetRateRequest{From: "sgd", To: "jpy"}))
	require.NoError(t, err)
	assert.Equal(t, "SGD", resp.Msg.From)
	assert.Equal(t, "JPY", resp.Msg.To)
	assert.InDelta(t, 110, resp.Msg.Rate, 1e-9)

	tests := []struct {
		name string
		req  *api.GetRateRequest
	}{
		{"unknown code", &api.GetRateRequest{From: "USD", To: "ZZZ"}},
		{"bad code", &api.GetRateRequest{From: "US", To: "EUR"}},
		{"missing", &api.GetRateRequest{From: "USD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.currency.GetRate(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}
