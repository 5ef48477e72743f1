package config

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
)

type Upgrader struct {
	websocket.Upgrader
}

func NewUpgrader(cfg WebSocket) *Upgrader {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(cfg.AllowedOrigins) == 0 {
				return true
			}
			return slices.Contains(cfg.AllowedOrigins, r.Header.Get("Origin"))
		},
	}

	return &Upgrader{Upgrader: upgrader}
}
