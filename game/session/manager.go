package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Option configures a Manager
type Option func(*Manager)

// WithPersistence stores sessions through p
func WithPersistence(p SessionPersistence) Option {
	return func(m *Manager) {
		m.persistence = p
	}
}

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides time.Now
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.now = clock
	}
}

// Manager handles game session lifecycle. Sessions are keyed by game id.
//
// Lock order is session then manager: callers may hold a session's lock
// while calling into the manager, and the manager only ever TryLocks a
// session.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	logger      *zap.SugaredLogger
	now         func() time.Time
	mu          sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = zap.NewNop().Sugar()
	}
	return m
}

func key(id string) string {
	return strings.ToLower(id)
}

// validID rejects ids that could escape a storage namespace
func validID(id string) bool {
	return id != "" && len(id) <= 64 && !strings.ContainsAny(id, `/\:`) && !strings.Contains(id, "..")
}

// Create stores a new session for game
func (m *Manager) Create(game *engine.Game) (*service.Session, error) {
	if game == nil || !validID(game.ID) {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(game.ID)]; exists {
		return nil, ErrSessionAlreadyExists
	}
	if m.persistence != nil && m.persistence.Exists(game.ID) {
		return nil, ErrSessionAlreadyExists
	}

	now := m.now()
	session := &service.Session{
		ID:             game.ID,
		Game:           game,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(game.ID)] = session

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			// Log error but don't fail the creation
			m.logger.Warnw("failed to persist session", "session", game.ID, "error", err)
		}
	}

	return session, nil
}

// Get retrieves a session by ID (case-insensitive), loading it from
// persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	if !validID(id) {
		return nil, ErrSessionNotFound
	}

	m.mu.RLock()
	session, exists := m.sessions[key(id)]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another caller may have loaded it meanwhile; everyone must share one session
	if session, exists := m.sessions[key(id)]; exists {
		return session, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// List returns all sessions held in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.persistence != nil && validID(id) && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key(id)]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session. The
// caller holds the session's lock.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[key(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = m.now()
	return nil
}

// Save persists one session. The caller holds the session's lock.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	m.mu.RLock()
	session, exists := m.sessions[key(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions that haven't been accessed in the
// given duration from memory. Persisted copies stay loadable. Sessions busy
// with an action are skipped.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if !session.TryLock() {
			continue
		}
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
		session.Unlock()
	}

	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		// Skip if already loaded in memory
		if _, exists := m.sessions[key(id)]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			m.logger.Warnw("failed to load persisted session", "session", id, "error", err)
			continue
		}

		m.sessions[key(id)] = session
		loadedCount++
	}

	if loadedCount > 0 {
		m.logger.Infow("loaded persisted sessions", "count", loadedCount)
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	sessions := m.List()

	errorCount := 0
	for _, session := range sessions {
		session.Lock()
		err := m.persistence.Save(session)
		session.Unlock()
		if err != nil {
			m.logger.Warnw("failed to save session", "session", session.ID, "error", err)
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}
