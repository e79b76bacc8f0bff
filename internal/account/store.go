// Package account implements the account store: user creation, credential
// verification and the read-modify-write cycle for groups and plans.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmynk/splitlah/internal/auth"
	"github.com/mmynk/splitlah/internal/models"
	"github.com/mmynk/splitlah/internal/storage"
)

// Ensure Store implements auth.Authenticator
var _ auth.Authenticator = (*Store)(nil)

// Store persists user records through a storage.UserRepository and guarantees
// that only hashed passwords ever reach it.
type Store struct {
	repo   storage.UserRepository
	hasher auth.Hasher
	logger *slog.Logger

	// mu serialises read-modify-write cycles within this process.
	mu sync.Mutex
}

// New creates an account store over repo.
func New(repo storage.UserRepository, hasher auth.Hasher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// Create registers username with a freshly hashed password and default plan.
// The username is trimmed; uniqueness is case-insensitive.
func (s *Store) Create(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	if find(users, username) >= 0 {
		return ErrAlreadyExists
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	user := models.NewUser(username, hashed)
	if err := s.checkHashes(append(users, *user)); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User created", "username", username)
	return nil
}

// Verify checks the password for username and returns the stored casing of the name.
func (s *Store) Verify(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrAuthFailure
	}

	users, err := s.repo.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load users: %w", err)
	}

	i := find(users, username)
	if i < 0 {
		return "", ErrAuthFailure
	}
	if err := s.hasher.Verify(password, users[i].PasswordHash); err != nil {
		return "", ErrAuthFailure
	}
	return users[i].Username, nil
}

// Get returns a copy of the record for username.
func (s *Store) Get(ctx context.Context, username string) (*models.User, error) {
	users, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	i := find(users, username)
	if i < 0 {
		return nil, ErrNotFound
	}
	return users[i].Clone(), nil
}

// List returns every stored record.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}

// UpdateGroups replaces the full group mapping of username.
func (s *Store) UpdateGroups(ctx context.Context, username string, groups map[string][]string) error {
	return s.mutate(ctx, username, func(u *models.User) error {
		u.Groups = models.CloneGroups(groups)
		return nil
	})
}

// UpdatePlan sets the plan type and billing cycle of username.
func (s *Store) UpdatePlan(ctx context.Context, username string, planType models.PlanType, duration models.PlanDuration) error {
	if _, ok := models.LookupPlan(planType); !ok || !models.ValidDuration(duration) {
		return fmt.Errorf("%w: %q %q", ErrInvalidPlan, planType, duration)
	}
	return s.mutate(ctx, username, func(u *models.User) error {
		u.PlanType = planType
		u.PlanDuration = duration
		return nil
	})
}

// mutate loads all records, applies fn to the one matching username and
// rewrites the whole set. Nothing is written if fn fails or any record
// fails the hash check.
func (s *Store) mutate(ctx context.Context, username string, fn func(*models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	i := find(users, username)
	if i < 0 {
		return ErrNotFound
	}
	if err := fn(&users[i]); err != nil {
		return err
	}

	if err := s.checkHashes(users); err != nil {
		return err
	}
	if err := s.repo.SaveAtomic(ctx, users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

// checkHashes fails with ErrInvariantViolation if any record's password
// field is not a well-formed hash.
func (s *Store) checkHashes(users []models.User) error {
	for _, u := range users {
		if !s.hasher.IsHash(u.PasswordHash) {
			s.logger.Error("Refusing to persist unhashed password", "username", u.Username)
			return fmt.Errorf("%w for user %q", ErrInvariantViolation, u.Username)
		}
	}
	return nil
}

func find(users []models.User, username string) int {
	for i := range users {
		if users[i].Matches(username) {
			return i
		}
	}
	return -1
}
