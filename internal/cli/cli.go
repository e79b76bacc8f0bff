// Package cli holds the splitctl subcommands. They work directly on the
// configured storage and rate endpoint, so no server needs to be running.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitlah/internal/account"
	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/config"
	"github.com/mmynk/splitlah/internal/currency"
	"github.com/mmynk/splitlah/internal/storage/backend"
)

// Env is shared by every command.
type Env struct {
	ConfigPath string
	// Plain prints raw markdown instead of rendering it for the terminal.
	Plain  bool
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger

	// Rates overrides the rate client built from config.
	Rates RateSource
}

// RateSource provides exchange rates. *currency.Client satisfies it.
type RateSource interface {
	Rates(ctx context.Context) currency.Table
}

// Commands returns every splitctl subcommand bound to env.
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&useraddCmd{env: env},
		&usersCmd{env: env},
		&planCmd{env: env},
		&groupsCmd{env: env},
		&splitCmd{env: env},
		&ratesCmd{env: env},
		&convertCmd{env: env},
	}
}

func (e *Env) config() (*config.Config, error) {
	return config.Load(e.ConfigPath)
}

// accounts opens the account store. The caller must run the returned close func.
func (e *Env) accounts() (*account.Store, func(), error) {
	cfg, err := e.config()
	if err != nil {
		return nil, nil, err
	}
	repo, err := backend.Open(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	cost := cfg.Auth.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	store := account.New(repo, auth.NewBcryptHasher(cost), e.Logger)
	return store, func() { repo.Close() }, nil
}

func (e *Env) rates() (RateSource, error) {
	if e.Rates != nil {
		return e.Rates, nil
	}
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	return currency.NewClient(currency.Config{
		URL:     cfg.Currency.URL,
		Timeout: cfg.Currency.Timeout,
	}, currency.WithLogger(e.Logger)), nil
}

// fail prints err and returns the failure status.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: %v\n", err)
	return subcommands.ExitFailure
}

// usage prints msg and returns the usage status.
func (e *Env) usage(msg string) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: %s\n", msg)
	return subcommands.ExitUsageError
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseAmounts parses a comma separated list of numbers.
func parseAmounts(s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q", p)
		}
		if err := checkAmount(v); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// checkAmount rejects NaN, infinities and negatives.
func checkAmount(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("amount %v is not a finite number", v)
	case v < 0:
		return fmt.Errorf("amount %v is negative", v)
	}
	return nil
}
