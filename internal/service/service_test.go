package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/currency"
	"github.com/mmynk/splitlah/internal/metrics"
	"github.com/mmynk/splitlah/internal/middleware"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/internal/storage/jsonfile"
	"github.com/mmynk/splitlah/pkg/api"
	"github.com/mmynk/splitlah/pkg/logging"
)

// fixedRates serves the fallback table without touching the network.
type fixedRates struct{}

func (fixedRates) Rates(context.Context) currency.Table {
	return currency.Table{Rates: currency.Fallback(), Source: currency.SourceFallback, FetchedAt: time.Now()}
}

type testEnv struct {
	auth     api.AuthServiceClient
	plans    api.PlanServiceClient
	groups   api.GroupServiceClient
	split    api.SplitServiceClient
	currency api.CurrencyServiceClient

	accounts *account.Store
	sessions *session.Manager
	metrics  *metrics.Metrics
}

// setupTestServer wires every service behind the real auth interceptor,
// backed by a record file in a temp dir.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	repo, err := jsonfile.New(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := logging.Discard()
	accounts := account.New(repo, auth.NewBcryptHasher(bcrypt.MinCost), logger)
	sessions := session.NewManager(time.Hour, logger)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.New()

	public := connect.WithInterceptors(middleware.MetricsInterceptor(m), middleware.LoggingInterceptor(logger))
	private := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager, sessions),
		middleware.LoggingInterceptor(logger),
	)

	// Signup and Login are public; Logout and GetCurrentUser check the
	// session attached by OptionalAuth themselves.
	optional := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.OptionalAuth(jwtManager, sessions),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(accounts, sessions, jwtManager, logger, m), optional))
	mux.Handle(api.NewPlanServiceHandler(NewPlanService(accounts, sessions, logger), private))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(accounts, logger), private))
	mux.Handle(api.NewSplitServiceHandler(NewSplitService(fixedRates{}, logger, m), private))
	mux.Handle(api.NewCurrencyServiceHandler(NewCurrencyService(fixedRates{}, logger), public))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		auth:     api.NewAuthServiceClient(http.DefaultClient, server.URL),
		plans:    api.NewPlanServiceClient(http.DefaultClient, server.URL),
		groups:   api.NewGroupServiceClient(http.DefaultClient, server.URL),
		split:    api.NewSplitServiceClient(http.DefaultClient, server.URL),
		currency: api.NewCurrencyServiceClient(http.DefaultClient, server.URL),
		accounts: accounts,
		sessions: sessions,
		metrics:  m,
	}
}

// signupAndLogin creates username and returns a bearer token for it.
func (e *testEnv) signupAndLogin(t *testing.T, username string) string {
	t.Helper()
	ctx := context.Background()

	if _, err := e.auth.Signup(ctx, connect.NewRequest(&api.SignupRequest{Username: username, Password: "pw-" + username})); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	resp, err := e.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Username: username, Password: "pw-" + username}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return resp.Msg.Token
}

// authed wraps msg in a request carrying token.
func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected %v, got %v (%v)", want, got, err)
	}
}

func upgrade(t *testing.T, e *testEnv, token string) {
	t.Helper()
	_, err := e.plans.UpdatePlan(context.Background(), authed(token, &api.UpdatePlanRequest{
		PlanType:     "Premium Solo",
		PlanDuration: "Monthly",
	}))
	if err != nil {
		t.Fatalf("UpdatePlan failed: %v", err)
	}
}
