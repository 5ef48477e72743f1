package session

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/minefield/internal/mines"
)

type Move uint8

const (
	Reveal Move = iota + 1
	Flag
	Restart
	LAST_MOVE
)

var ErrBadMove error

func init() {
	var allowedMoves []string
	for i := 1; i < int(LAST_MOVE); i++ {
		allowedMoves = append(allowedMoves, "'"+Move(i).String()+"'")
	}
	ErrBadMove = fmt.Errorf(
		"move must be one of %s",
		strings.ToLower(strings.Join(allowedMoves, ", ")),
	)
}

func (m Move) String() string {
	switch m {
	case Reveal:
		return "Reveal"
	case Flag:
		return "Flag"
	case Restart:
		return "Restart"
	}
	return fmt.Sprintf("Move(%d)", uint8(m))
}

func ParseMove(s string) (move Move, err error) {
	switch strings.ToLower(s) {
	case "reveal", "open":
		move = Reveal
	case "flag":
		move = Flag
	case "restart":
		move = Restart
	default:
		err = ErrBadMove
	}
	return
}

// Session wraps a game with the bookkeeping its collaborators need: an
// identifier and the timestamps the elapsed-time counter is derived from.
// Round counts restarts, so ID and Round together name one played board.
type Session struct {
	ID        string
	Round     int
	Game      *mines.Game
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
}

func New(params mines.Params, r *rand.Rand) (*Session, error) {
	game, err := mines.NewGame(params, r)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        uuid.NewString(),
		Game:      game,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Apply runs a move against the game and stamps the start and end times
// when the move changes the game state. It reports whether the move
// finished the game.
func (s *Session) Apply(move Move, index int, r *rand.Rand) (finished bool, err error) {
	before := s.Game.State()

	switch move {
	case Reveal:
		err = s.Game.Reveal(index)
	case Flag:
		err = s.Game.ToggleFlag(index)
	case Restart:
		s.Restart(r)
		return false, nil
	default:
		return false, ErrBadMove
	}
	if err != nil {
		return false, err
	}

	after := s.Game.State()
	if before == after {
		return false, nil
	}
	now := time.Now().UTC()
	if before == mines.NotStarted {
		s.StartedAt = &now
	}
	if s.Game.Finished() {
		s.EndedAt = &now
		return true, nil
	}
	return false, nil
}

func (s *Session) Restart(r *rand.Rand) {
	s.Game.Restart(r)
	s.Round++
	s.StartedAt = nil
	s.EndedAt = nil
}

// Elapsed is the time spent in the running state, frozen once the game ends.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	if s.EndedAt != nil {
		return s.EndedAt.Sub(*s.StartedAt)
	}
	return now.Sub(*s.StartedAt)
}

func Decode(buf []byte) (*Session, error) {
	var s Session
	if err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s Session) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
