package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vancomm/minefield/internal/session"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local [Store]. Sessions are kept gob-encoded so that
// callers never share a *session.Session with the store.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) put(id string, s *session.Session) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	m.entries[id] = entry{value: b, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// lookup expects m.mu to be held.
func (m *Memory) lookup(id string) (*session.Session, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.ttl > 0 && !m.now().Before(e.expiresAt) {
		delete(m.entries, id)
		return nil, ErrNotFound
	}
	return session.Decode(e.value)
}

func (m *Memory) Create(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(s.ID); err == nil {
		return ErrExists
	}
	return m.put(s.ID, s)
}

func (m *Memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lookup(id)
}

func (m *Memory) Update(
	ctx context.Context, id string, fn func(*session.Session) error,
) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.put(id, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, e := range m.entries {
		if m.ttl <= 0 || now.Before(e.expiresAt) {
			n++
		}
	}
	return n, nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	n := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Janitor sweeps the store every interval until ctx is done.
func (m *Memory) Janitor(ctx context.Context, logger *slog.Logger, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
