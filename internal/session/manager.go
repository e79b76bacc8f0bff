package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/splitlah/internal/models"
)

// Manager tracks live sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewManager creates a manager. Sessions idle for longer than ttl are
// treated as ended; a zero ttl keeps them until logout.
func NewManager(ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new session for u.
func (m *Manager) Create(u *models.User) *Session {
	s := newSession(u, m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("Session created", "session_id", s.ID, "username", s.Username)
	return s
}

// Get returns the live session with the given ID and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := m.now()
	s.mu.Lock()
	expired := m.ttl > 0 && now.Sub(s.lastSeen) > m.ttl
	if !expired {
		s.lastSeen = now
	}
	s.mu.Unlock()

	if expired {
		m.End(id)
		return nil, ErrExpired
	}
	return s, nil
}

// End destroys a session and its budget state. Ending an unknown ID is a no-op.
func (m *Manager) End(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	s.ResetBudget()
	s.Budget = nil
	s.CurrentMembers = nil
	s.mu.Unlock()

	m.logger.Debug("Session ended", "session_id", id, "username", s.Username)
}

// ForUser returns every live session belonging to username.
func (m *Manager) ForUser(username string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Session
	for _, s := range m.sessions {
		if strings.EqualFold(s.Username, username) {
			out = append(out, s)
		}
	}
	return out
}

// Sweep ends every session idle past the ttl and reports how many went.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	now := m.now()

	var stale []string
	m.mu.RLock()
	for id, s := range m.sessions {
		s.mu.Lock()
		if now.Sub(s.lastSeen) > m.ttl {
			stale = append(stale, id)
		}
		s.mu.Unlock()
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.End(id)
	}
	return len(stale)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
