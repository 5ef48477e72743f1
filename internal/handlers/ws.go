package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minefield/internal/store"
)

func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := g.store.Get(r.Context(), id); errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch session", slog.Any("error", err))
		return
	}

	c, err := g.ws.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	logger := g.logger.With(slog.String("id", id))
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("unable to read message", slog.Any("error", err))
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		text := strings.TrimSpace(string(message))
		logger.Debug("ws message", slog.String("text", text))

		if err := g.runCommands(r, id, text); err != nil {
			if statusOf(err) == http.StatusInternalServerError {
				logger.Error("unable to run command", slog.Any("error", err))
				return
			}
			if err := c.WriteJSON(wrapError(err)); err != nil {
				logger.Error("unable to write", slog.Any("error", err))
				return
			}
			continue
		}

		s, err := g.store.Get(r.Context(), id)
		if err != nil {
			logger.Error("unable to fetch session", slog.Any("error", err))
			return
		}
		if err := c.WriteJSON(NewSessionDTO(s, g.now())); err != nil {
			logger.Error("unable to write", slog.Any("error", err))
			return
		}
	}
}

// runCommands applies newline separated commands in order, stopping at the
// first bad one.
func (g GameHandler) runCommands(r *http.Request, id, text string) error {
	for _, line := range byPiece(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			return err
		}
		if cmd.move == 0 {
			continue
		}
		if _, err := g.apply(r.Context(), id, cmd.move, cmd.index); err != nil {
			return err
		}
	}
	return nil
}
