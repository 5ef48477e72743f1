package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/internal/session"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type NewGameDTO struct {
	Width     int `schema:"width"`
	Height    int `schema:"height"`
	MineCount int `schema:"mine_count"`
}

var ErrBoardTooLarge = errors.New("board is too large")

// ParseNewGameDTO fills in whatever the query leaves out from defaults and
// rejects boards with more than maxCells cells.
func ParseNewGameDTO(src url.Values, defaults mines.Params, maxCells int) (mines.Params, error) {
	dto := NewGameDTO(defaults)
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Params{}, err
	}
	params := mines.Params(dto)
	if err := params.Validate(); err != nil {
		return mines.Params{}, err
	}
	if params.Width > maxCells || params.Height > maxCells || params.Size() > maxCells {
		return mines.Params{}, fmt.Errorf(
			"%w: %dx%d exceeds %d cells",
			ErrBoardTooLarge, params.Width, params.Height, maxCells,
		)
	}
	return params, nil
}

var ErrMissingIndex = errors.New("index is required for this move")

type MoveDTO struct {
	Move  string `schema:"move,required"`
	Index int    `schema:"index"`
}

func ParseMoveDTO(src url.Values) (session.Move, int, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return 0, 0, err
	}
	move, err := session.ParseMove(dto.Move)
	if err != nil {
		return 0, 0, err
	}
	if move != session.Restart && !src.Has("index") {
		return 0, 0, ErrMissingIndex
	}
	return move, dto.Index, nil
}

type OutcomesDTO struct {
	Limit int `schema:"limit"`
}

func ParseOutcomesDTO(src url.Values) (int, error) {
	dto := OutcomesDTO{Limit: repository.DefaultOutcomeLimit}
	err := decoder.Decode(&dto, src)
	return dto.Limit, err
}

type CellDTO struct {
	State     string `json:"state"`
	Mine      bool   `json:"mine,omitempty"`
	Detonated bool   `json:"detonated,omitempty"`
	Hint      int    `json:"hint"`
	Label     string `json:"label,omitempty"`
}

func NewCellDTO(v mines.CellView) CellDTO {
	dto := CellDTO{
		State:     v.State.String(),
		Mine:      v.Mine,
		Detonated: v.Detonated,
		Hint:      v.Hint,
	}
	if v.State == mines.Revealed && !v.Mine {
		dto.Label = mines.HintLabel(v.Hint)
	}
	return dto
}

type SessionDTO struct {
	ID             string    `json:"id"`
	Round          int       `json:"round"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	MineCount      int       `json:"mine_count"`
	State          string    `json:"state"`
	MinesRemaining int       `json:"mines_remaining"`
	ElapsedMs      int64     `json:"elapsed_ms"`
	StartedAt      *int64    `json:"started_at,omitempty"`
	EndedAt        *int64    `json:"ended_at,omitempty"`
	Cells          []CellDTO `json:"cells"`
	Token          string    `json:"token,omitempty"`
}

func unixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func NewSessionDTO(s *session.Session, now time.Time) *SessionDTO {
	views := s.Game.Cells()
	cells := make([]CellDTO, len(views))
	for i, v := range views {
		cells[i] = NewCellDTO(v)
	}
	return &SessionDTO{
		ID:             s.ID,
		Round:          s.Round,
		Width:          s.Game.Width,
		Height:         s.Game.Height,
		MineCount:      s.Game.MineCount,
		State:          s.Game.State().String(),
		MinesRemaining: s.Game.MinesRemaining(),
		ElapsedMs:      s.Elapsed(now).Milliseconds(),
		StartedAt:      unixMilli(s.StartedAt),
		EndedAt:        unixMilli(s.EndedAt),
		Cells:          cells,
	}
}
