package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/metrics"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/internal/session"
	"github.com/vancomm/minefield/internal/store"
)

type OutcomeRecorder interface {
	RecordOutcome(context.Context, repository.RecordOutcomeParams) (*repository.Outcome, error)
}

type GameHandler struct {
	logger   *slog.Logger
	store    store.Store
	jwt      *config.JWT
	ws       *config.Upgrader
	metrics  *metrics.Metrics
	outcomes OutcomeRecorder
	defaults mines.Params
	maxCells int
	newRand  func() *rand.Rand
	now      func() time.Time
}

type GameHandlerOptions struct {
	Store    store.Store
	JWT      *config.JWT
	WS       *config.Upgrader
	Metrics  *metrics.Metrics
	Outcomes OutcomeRecorder // may be nil
	Defaults mines.Params
	MaxCells int
	NewRand  func() *rand.Rand
}

func NewGameHandler(logger *slog.Logger, opts GameHandlerOptions) *GameHandler {
	newRand := opts.NewRand
	if newRand == nil {
		newRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &GameHandler{
		logger:   logger,
		store:    opts.Store,
		jwt:      opts.JWT,
		ws:       opts.WS,
		metrics:  opts.Metrics,
		outcomes: opts.Outcomes,
		defaults: opts.Defaults,
		maxCells: opts.MaxCells,
		newRand:  newRand,
		now:      time.Now,
	}
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseNewGameDTO(r.URL.Query(), g.defaults, g.maxCells)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s, err := session.New(params, g.newRand())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	if err := g.store.Create(r.Context(), s); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to store new session", slog.Any("error", err))
		return
	}

	token, err := g.jwt.Sign(g.jwt.NewGameClaims(s.ID))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to sign game token", slog.Any("error", err))
		return
	}

	g.metrics.GameCreated()
	g.logger.Debug("created game",
		slog.String("id", s.ID),
		slog.String("seed", params.Seed()),
	)

	dto := NewSessionDTO(s, g.now())
	dto.Token = token
	sendStatusJSON(w, g.logger, http.StatusCreated, dto)
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := g.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch session", slog.Any("error", err))
		return
	}

	sendJSONOrLog(w, g.logger, NewSessionDTO(s, g.now()))
}

// apply runs one move inside a store transaction and, when the move ends
// the game, records the outcome.
func (g GameHandler) apply(ctx context.Context, id string, move session.Move, index int) (*session.Session, error) {
	var finished bool
	s, err := g.store.Update(ctx, id, func(s *session.Session) error {
		var err error
		finished, err = s.Apply(move, index, g.newRand())
		return err
	})
	if err != nil {
		return nil, err
	}

	g.metrics.MoveApplied(strings.ToLower(move.String()))
	if finished {
		g.finish(ctx, s)
	}
	return s, nil
}

func (g GameHandler) finish(ctx context.Context, s *session.Session) {
	elapsed := s.Elapsed(g.now())
	g.metrics.GameFinished(s.Game.IsWon(), elapsed)
	g.logger.Info("game finished",
		slog.String("id", s.ID),
		slog.Int("round", s.Round),
		slog.String("state", s.Game.State().String()),
		slog.Duration("elapsed", elapsed),
	)

	if g.outcomes == nil {
		return
	}
	_, err := g.outcomes.RecordOutcome(ctx, repository.RecordOutcomeParams{
		GameID:    s.ID,
		Round:     s.Round,
		Width:     s.Game.Width,
		Height:    s.Game.Height,
		MineCount: s.Game.MineCount,
		Won:       s.Game.IsWon(),
		Elapsed:   elapsed,
	})
	switch {
	case errors.Is(err, repository.ErrOutcomeExists):
		g.logger.Debug("outcome already recorded",
			slog.String("id", s.ID),
			slog.Int("round", s.Round),
		)
	case err != nil:
		g.logger.Error("unable to record outcome",
			slog.String("id", s.ID),
			slog.Int("round", s.Round),
			slog.Any("error", err),
		)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mines.ErrIndexOutOfRange), errors.Is(err, session.ErrBadMove):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	move, index, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	s, err := g.apply(r.Context(), r.PathValue("id"), move, index)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			w.WriteHeader(status)
			g.logger.Error("unable to apply move", slog.Any("error", err))
			return
		}
		sendError(w, g.logger, status, err)
		return
	}

	sendJSONOrLog(w, g.logger, NewSessionDTO(s, g.now()))
}
