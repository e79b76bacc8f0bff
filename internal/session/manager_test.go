package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitlah/internal/calculator"
	"github.com/mmynk/splitlah/internal/models"
)

func testUser() *models.User {
	u := models.NewUser("Alice", "$2a$04$abcdefghijklmnopqrstuuN4JZ2l2xL1Y2o7p6mQ8h8h8h8h8h8h8")
	u.Groups = map[string][]string{"flat": {"Alice", "Bob"}}
	return u
}

func TestCreateGet(t *testing.T) {
	m := NewManager(0, nil)
	u := testUser()

	s := m.Create(u)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "Alice", s.Username)
	assert.Equal(t, models.PlanBasic, s.PlanType)
	assert.Equal(t, models.Monthly, s.PlanDuration)
	assert.Nil(t, s.Budget)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	// the session owns its own copy of the groups
	u.Groups["flat"][0] = "Mallory"
	assert.Equal(t, []string{"Alice", "Bob"}, got.Groups["flat"])

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(0, nil)
	a := m.Create(testUser())
	b := m.Create(testUser())
	require.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.Do(func(s *Session) error {
		s.CurrentMembers = []string{"Alice", "Bob"}
		return s.DeclareBudget(100)
	}))

	assert.Nil(t, b.Budget)
	assert.Empty(t, b.CurrentMembers)
	assert.Len(t, m.ForUser("alice"), 2)
}

func TestEndClearsBudget(t *testing.T) {
	m := NewManager(0, nil)
	s := m.Create(testUser())
	require.NoError(t, s.Do(func(s *Session) error { return s.DeclareBudget(50) }))
	budget := s.Budget

	m.End(s.ID)
	m.End(s.ID)

	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, s.Budget)
	assert.False(t, budget.Active)
	assert.Zero(t, budget.Remaining)
	assert.Equal(t, 0, m.Len())
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Hour, nil)
	m.now = func() time.Time { return now }

	idle := m.Create(testUser())
	busy := m.Create(testUser())

	now = now.Add(50 * time.Minute)
	_, err := m.Get(busy.ID)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(busy.ID)
	assert.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.Get(busy.ID)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, m.Len())
}

func TestRefreshAndSnapshot(t *testing.T) {
	m := NewManager(0, nil)
	u := testUser()
	s := m.Create(u)

	u.PlanType = models.PlanPremiumSolo
	u.PlanDuration = models.Yearly
	s.Refresh(u)

	require.NoError(t, s.Do(func(s *Session) error { return s.DeclareBudget(80) }))
	snap := s.Snapshot()
	assert.Equal(t, models.PlanPremiumSolo, snap.PlanType)
	assert.Equal(t, models.Yearly, snap.PlanDuration)
	require.NotNil(t, snap.Budget)
	assert.Equal(t, 80.0, snap.Budget.Remaining)

	p, err := calculator.Collect(calculator.MethodEven, 30, []string{"Alice"}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Do(func(s *Session) error {
		_, err := s.Budget.Spend(p)
		return err
	}))
	assert.Equal(t, 80.0, snap.Budget.Remaining, "snapshot must not track later spends")
	assert.Equal(t, 50.0, s.Snapshot().Budget.Remaining)
}
