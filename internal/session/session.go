// Package session holds per-login working state: the user's plan and groups,
// the active member list, and any budget being tracked. Nothing here is
// persisted; a session dies with the process or on logout.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitlah/internal/calculator"
	"github.com/mmynk/splitlah/internal/models"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
	ErrNoBudget = errors.New("no budget declared in this session")
)

// Session is the working context for one logged-in user.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time

	PlanType     models.PlanType
	PlanDuration models.PlanDuration
	Groups       map[string][]string

	// CurrentMembers is the member list the user is splitting with right now.
	CurrentMembers []string

	// Budget is nil until one is declared.
	Budget *calculator.Budget

	mu       sync.Mutex
	lastSeen time.Time
}

func newSession(u *models.User, now time.Time) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Username:  u.Username,
		CreatedAt: now,
		lastSeen:  now,
	}
	s.refresh(u)
	return s
}

// Do runs fn with the session locked.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Refresh copies plan and group data from a freshly loaded user record.
func (s *Session) Refresh(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(u)
}

func (s *Session) refresh(u *models.User) {
	s.PlanType = u.PlanType
	s.PlanDuration = u.PlanDuration
	s.Groups = models.CloneGroups(u.Groups)
}

// DeclareBudget starts a budget, creating one if the session has none.
// Callers must hold the session lock (use Do).
func (s *Session) DeclareBudget(amount float64) error {
	if s.Budget == nil {
		b, err := calculator.NewBudget(amount)
		if err != nil {
			return err
		}
		s.Budget = b
		return nil
	}
	return s.Budget.Declare(amount)
}

// ResetBudget zeroes the budget and forgets staged inputs.
// Callers must hold the session lock (use Do).
func (s *Session) ResetBudget() {
	if s.Budget != nil {
		s.Budget.Reset()
	}
}

// Snapshot is a copy of the session fields safe to read without the lock.
type Snapshot struct {
	ID             string
	Username       string
	PlanType       models.PlanType
	PlanDuration   models.PlanDuration
	Groups         map[string][]string
	CurrentMembers []string
	Budget         *calculator.Budget
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:             s.ID,
		Username:       s.Username,
		PlanType:       s.PlanType,
		PlanDuration:   s.PlanDuration,
		Groups:         models.CloneGroups(s.Groups),
		CurrentMembers: append([]string(nil), s.CurrentMembers...),
	}
	if s.Budget != nil {
		b := *s.Budget
		snap.Budget = &b
	}
	return snap
}
