package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancomm/minefield/internal/repository"
)

type OutcomeLister interface {
	ListOutcomes(ctx context.Context, limit int) ([]repository.Outcome, error)
}

type OutcomesHandler struct {
	logger *slog.Logger
	lister OutcomeLister
}

// NewOutcomesHandler accepts a nil lister; every request is then answered
// with 503.
func NewOutcomesHandler(logger *slog.Logger, lister OutcomeLister) *OutcomesHandler {
	return &OutcomesHandler{logger: logger, lister: lister}
}

func (h OutcomesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	limit, err := ParseOutcomesDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	outcomes, err := h.lister.ListOutcomes(r.Context(), limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to list outcomes", slog.Any("error", err))
		return
	}
	if outcomes == nil {
		outcomes = []repository.Outcome{}
	}

	sendJSONOrLog(w, h.logger, outcomes)
}
