package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/config"
	"github.com/mmynk/splitlah/internal/currency"
	"github.com/mmynk/splitlah/internal/metrics"
	"github.com/mmynk/splitlah/internal/middleware"
	"github.com/mmynk/splitlah/internal/service"
	"github.com/mmynk/splitlah/internal/session"
	"github.com/mmynk/splitlah/internal/storage/backend"
	"github.com/mmynk/splitlah/pkg/api"
	"github.com/mmynk/splitlah/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default ./"+config.DefaultFile+" if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Source: cfg.Log.Source,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := backend.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer repo.Close()
	logger.Info("Storage initialized", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	m := metrics.New()
	accounts := account.New(repo, auth.NewBcryptHasher(cfg.Auth.BcryptCost), logger)
	sessions := session.NewManager(cfg.Auth.SessionTTL, logger)
	m.TrackSessions(sessions.Len)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	rates := currency.NewClient(currency.Config{
		URL:         cfg.Currency.URL,
		Timeout:     cfg.Currency.Timeout,
		TTL:         cfg.Currency.CacheTTL,
		MinInterval: cfg.Currency.MinInterval,
	}, currency.WithLogger(logger), currency.WithOutcomeCounter(m.RateFetches))

	public := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.LoggingInterceptor(logger),
	)
	private := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(jwtManager, sessions),
		middleware.LoggingInterceptor(logger),
	)
	// Signup and Login are anonymous; Logout and GetCurrentUser need the
	// session OptionalAuth attaches when a token is sent.
	optional := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.OptionalAuth(jwtManager, sessions),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(service.NewAuthService(accounts, sessions, jwtManager, logger, m), optional))
	mux.Handle(api.NewPlanServiceHandler(service.NewPlanService(accounts, sessions, logger), private))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(accounts, logger), private))
	mux.Handle(api.NewSplitServiceHandler(service.NewSplitService(rates, logger, m), private))
	mux.Handle(api.NewCurrencyServiceHandler(service.NewCurrencyService(rates, logger), public))

	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	staticDir, err := filepath.Abs(cfg.Server.StaticDir)
	if err != nil {
		return fmt.Errorf("failed to resolve static path: %w", err)
	}
	logger.Info("Serving static files", "path", staticDir)
	mux.Handle("/", staticHandler(staticDir))

	handler := loggingMiddleware(logger, corsMiddleware(cfg.Server.AllowOrigin, mux))

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		// h2c gives Connect HTTP/2 without TLS
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepSessions(ctx, sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepSessions drops idle sessions until ctx is done.
func sweepSessions(ctx context.Context, sessions *session.Manager, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Info("Expired sessions removed", "count", n)
			}
		}
	}
}
