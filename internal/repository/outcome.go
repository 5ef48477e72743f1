package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrOutcomeExists = errors.New("outcome already recorded")

const (
	DefaultOutcomeLimit = 20
	MaxOutcomeLimit     = 100
)

// Outcome is the record of one finished game. Nothing about the board
// itself is kept.
type Outcome struct {
	GameID     string    `json:"game_id" db:"game_id"`
	Round      int       `json:"round" db:"round"`
	Width      int       `json:"width" db:"width"`
	Height     int       `json:"height" db:"height"`
	MineCount  int       `json:"mine_count" db:"mine_count"`
	Won        bool      `json:"won" db:"won"`
	ElapsedMs  int64     `json:"elapsed_ms" db:"elapsed_ms"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
}

type RecordOutcomeParams struct {
	GameID    string
	Round     int
	Width     int
	Height    int
	MineCount int
	Won       bool
	Elapsed   time.Duration
}

func (q Queries) RecordOutcome(ctx context.Context, params RecordOutcomeParams) (*Outcome, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_outcome (
			game_id, round, width, height, mine_count, won, elapsed_ms
		)
		VALUES (
			@game_id, @round, @width, @height, @mine_count, @won, @elapsed_ms
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"game_id":    params.GameID,
			"round":      params.Round,
			"width":      params.Width,
			"height":     params.Height,
			"mine_count": params.MineCount,
			"won":        params.Won,
			"elapsed_ms": params.Elapsed.Milliseconds(),
		},
	)
	outcome, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Outcome])

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return nil, fmt.Errorf("%w: %s round %d", ErrOutcomeExists, params.GameID, params.Round)
	}
	return outcome, err
}

// ListOutcomes returns at most limit outcomes, most recently finished first.
func (q Queries) ListOutcomes(ctx context.Context, limit int) ([]Outcome, error) {
	switch {
	case limit <= 0:
		limit = DefaultOutcomeLimit
	case limit > MaxOutcomeLimit:
		limit = MaxOutcomeLimit
	}
	rows, _ := q.db.Query(
		ctx,
		`SELECT * FROM game_outcome ORDER BY finished_at DESC, game_id, round DESC LIMIT $1`,
		limit,
	)
	return pgx.CollectRows(rows, pgx.RowToStructByName[Outcome])
}
