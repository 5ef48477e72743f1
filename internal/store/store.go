package store

import (
	"context"
	"fmt"

	"github.com/vancomm/minefield/internal/session"
)

var (
	ErrNotFound = fmt.Errorf("session not found")
	ErrExists   = fmt.Errorf("session already exists")
	ErrConflict = fmt.Errorf("session was modified concurrently")
)

// Store keeps live game sessions. Update runs fn with exclusive access to
// the session and persists the result only if fn returns nil, so callers
// never drive a game from two goroutines at once.
type Store interface {
	Create(ctx context.Context, s *session.Session) error
	Get(ctx context.Context, id string) (*session.Session, error)
	Update(ctx context.Context, id string, fn func(*session.Session) error) (*session.Session, error)
	Count(ctx context.Context) (int, error)
}
