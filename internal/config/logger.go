package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

func (a App) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(a.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger writes colored text in development and JSON otherwise.
func (a App) Logger(w io.Writer) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: a.Level(),
	})
	if a.Development {
		handler = tint.NewHandler(w, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}
