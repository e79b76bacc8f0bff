package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultURL     = "https://open.er-api.com/v6/latest/USD"
	DefaultTimeout = 10 * time.Second
	DefaultTTL     = time.Hour
)

// Fetch outcomes, used as the "outcome" metric label.
const (
	OutcomeLive      = "live"
	OutcomeCached    = "cached"
	OutcomeFallback  = "fallback"
	OutcomeThrottled = "throttled"
)

var errNoRates = errors.New("response carries no usable rates")

// Config controls the rate client.
type Config struct {
	URL     string
	Timeout time.Duration

	// TTL is how long a live table is reused before refetching.
	TTL time.Duration

	// MinInterval is the minimum spacing between outbound fetches.
	// Zero disables throttling.
	MinInterval time.Duration
}

// Client fetches and caches exchange rates.
type Client struct {
	url        string
	httpClient *http.Client
	ttl        time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	outcomes   *prometheus.CounterVec

	now func() time.Time

	flight singleflight.Group

	mu     sync.Mutex
	cached *Table
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOutcomeCounter records every Rates call in counter, labelled by outcome.
func WithOutcomeCounter(counter *prometheus.CounterVec) Option {
	return func(c *Client) { c.outcomes = counter }
}

// NewClient creates a rate client. Zero config fields take the defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	c := &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		ttl:        cfg.TTL,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rates returns the current rate table. It never fails: when the endpoint
// cannot be reached or returns something unusable, the fallback table is
// returned instead. Concurrent callers that miss the cache share one fetch,
// and the client lock is not held while it runs.
func (c *Client) Rates(ctx context.Context) Table {
	if t, ok := c.fresh(); ok {
		c.observe(OutcomeCached)
		return t
	}

	v, _, _ := c.flight.Do("rates", func() (any, error) {
		// callers joining the flight must not lose it to the first caller's cancel
		return c.refresh(context.WithoutCancel(ctx)), nil
	})
	t := v.(Table)
	return c.copyOf(&t)
}

// fresh returns a copy of the cached table if it is still within the TTL.
func (c *Client) fresh() (Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && c.now().Sub(c.cached.FetchedAt) < c.ttl {
		return c.copyOf(c.cached), true
	}
	return Table{}, false
}

func (c *Client) refresh(ctx context.Context) Table {
	// a flight that just finished may have filled the cache
	if t, ok := c.fresh(); ok {
		c.observe(OutcomeCached)
		return t
	}

	if !c.limiter.Allow() {
		c.observe(OutcomeThrottled)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.cached != nil {
			return c.copyOf(c.cached)
		}
		return c.fallback()
	}

	rates, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("Exchange rate fetch failed, using fallback", "url", c.url, "error", err)
		c.observe(OutcomeFallback)
		return c.fallback()
	}

	c.mu.Lock()
	c.cached = &Table{Rates: rates, Source: SourceLive, FetchedAt: c.now()}
	t := c.copyOf(c.cached)
	c.mu.Unlock()

	c.observe(OutcomeLive)
	c.logger.Debug("Exchange rates refreshed", "currencies", len(rates))
	return t
}

// invalidate drops the cached table so the next call refetches.
func (c *Client) invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

func (c *Client) fetch(ctx context.Context) (Rates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", c.url, resp.Status)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rates: %w", err)
	}
	return extractRates(doc)
}

// extractRates pulls the code→rate object out of a decoded response.
func extractRates(doc any) (Rates, error) {
	if result, err := jsonpath.Get("$.result", doc); err == nil {
		if s, ok := result.(string); ok && s != "success" {
			return nil, fmt.Errorf("endpoint reported %q", s)
		}
	}

	raw, err := jsonpath.Get("$.rates", doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoRates, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: rates is %T", errNoRates, raw)
	}

	rates := make(Rates, len(obj))
	for code, v := range obj {
		f, ok := v.(float64)
		if !ok || f <= 0 {
			continue
		}
		rates[strings.ToUpper(code)] = f
	}
	if len(rates) == 0 {
		return nil, errNoRates
	}
	if _, ok := rates[Base]; !ok {
		rates[Base] = 1.0
	}
	return rates, nil
}

func (c *Client) fallback() Table {
	return Table{Rates: Fallback(), Source: SourceFallback, FetchedAt: c.now()}
}

func (c *Client) copyOf(t *Table) Table {
	return Table{Rates: t.Rates.Clone(), Source: t.Source, FetchedAt: t.FetchedAt}
}

func (c *Client) observe(outcome string) {
	if c.outcomes != nil {
		c.outcomes.WithLabelValues(outcome).Inc()
	}
}
