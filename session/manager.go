package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// lockEntry serialises work on one conversation. The channel is a
// one-slot semaphore so waiting callers can give up when their context ends.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Manager keys sessions by conversation ID, creating them on first use.
// Work on the same conversation is serialised; unrelated conversations
// never share a session or a lock. Lock entries are reference counted and
// dropped once no caller holds or waits on them.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]Session
	locks    map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager for the configured backend.
func NewManager(cfg *Config, opts ...Option) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		sessions: make(map[string]Session),
		locks:    make(map[string]*lockEntry),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn with exclusive access to the conversation's session.
// An empty id starts a new conversation under a fresh UUIDv7; an unknown
// id starts one under that id. Returns the context error if the lock could
// not be taken before ctx ended.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context, Session) error) error {
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	entry := m.acquire(id)
	defer m.release(id)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("conversation %s busy: %w", id, ctx.Err())
	}
	defer func() { <-entry.sem }()

	return fn(ctx, m.open(id))
}

func (m *Manager) open(id string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists {
		s = newMemorySession(id)
		m.sessions[id] = s
		m.logger.Debug("conversation started", "conversation_id", id)
	}
	return s
}

// Get returns the session for id without locking it.
func (m *Manager) Get(id string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	return s, exists
}

// End discards a conversation. It waits for any cycle in progress on the
// conversation to finish. Returns ErrNotFound if the id is unknown.
func (m *Manager) End(ctx context.Context, id string) error {
	entry := m.acquire(id)
	defer m.release(id)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("conversation %s busy: %w", id, ctx.Err())
	}
	defer func() { <-entry.sem }()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.logger.Debug("conversation ended", "conversation_id", id)
	return nil
}

// IDs returns the active conversation ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
