package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitlah/internal/calculator"
	"github.com/mmynk/splitlah/internal/currency"
	"github.com/mmynk/splitlah/pkg/api"
)

// CurrencyService implements the Connect CurrencyService.
type CurrencyService struct {
	rates  RateSource
	logger *slog.Logger
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(rates RateSource, logger *slog.Logger) *CurrencyService {
	return &CurrencyService{rates: rates, logger: logger}
}

// ListCurrencies returns every known currency with its rate against USD.
func (s *CurrencyService) ListCurrencies(ctx context.Context, req *connect.Request[api.ListCurrenciesRequest]) (*connect.Response[api.ListCurrenciesResponse], error) {
	table := s.rates.Rates(ctx)

	codes := table.Rates.Codes()
	out := make([]api.Currency, len(codes))
	for i, code := range codes {
		out[i] = api.Currency{
			Code:  code,
			Name:  currency.Name(code),
			Label: currency.Label(code),
			Rate:  table.Rates[code],
		}
	}

	s.logger.Debug("ListCurrencies", "source", table.Source, "count", len(out))
	return connect.NewResponse(&api.ListCurrenciesResponse{
		Base:       currency.Base,
		Source:     string(table.Source),
		FetchedAt:  table.FetchedAt.Unix(),
		Currencies: out,
	}), nil
}

// GetRate returns how many units of To one unit of From buys.
func (s *CurrencyService) GetRate(ctx context.Context, req *connect.Request[api.GetRateRequest]) (*connect.Response[api.GetRateResponse], error) {
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	table := s.rates.Rates(ctx)
	fromRate, toRate, err := lookupPair(table, req.Msg.From, req.Msg.To)
	if err != nil {
		return nil, err
	}
	rate, err := calculator.CrossRate(fromRate, toRate)
	if err != nil {
		return nil, engineError(err)
	}

	return connect.NewResponse(&api.GetRateResponse{
		From:   strings.ToUpper(req.Msg.From),
		To:     strings.ToUpper(req.Msg.To),
		Rate:   rate,
		Source: string(table.Source),
	}), nil
}
