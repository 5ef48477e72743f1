package app

import (
	"log/slog"
	"net/http"

	"github.com/vancomm/minefield/internal/handlers"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/repository"
)

func (a *App) loadRoutes() {
	var (
		recorder handlers.OutcomeRecorder
		lister   handlers.OutcomeLister
	)
	if a.db != nil {
		repo := repository.New(a.db)
		recorder, lister = repo, repo
	}

	game := handlers.NewGameHandler(a.logger, handlers.GameHandlerOptions{
		Store:    a.store,
		JWT:      a.jwt,
		WS:       a.ws,
		Metrics:  a.metrics,
		Outcomes: recorder,
		Defaults: a.cfg.Game.Params(),
		MaxCells: a.cfg.Game.MaxCells,
	})
	outcomes := handlers.NewOutcomesHandler(a.logger, lister)
	auth := middleware.Auth(a.logger, a.jwt)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.Handle("POST /game/{id}/move", middleware.Wrap(http.HandlerFunc(game.MakeAMove), auth))
	a.router.Handle("GET /game/{id}/connect", middleware.Wrap(http.HandlerFunc(game.ConnectWS), auth))
	a.router.HandleFunc("GET /outcomes", outcomes.List)
	a.router.Handle("GET /metrics", a.metrics.Handler())
	a.router.HandleFunc("GET /healthz", a.health)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	n, err := a.store.Count(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		a.logger.Error("session store unavailable", slog.Any("error", err))
		return
	}
	if _, err := handlers.SendJSON(w, map[string]any{
		"status":   "ok",
		"sessions": n,
		"database": a.db != nil,
	}); err != nil {
		a.logger.Error("unable to send health", slog.Any("error", err))
	}
}
