package orderbook

import (
	"io"
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogger replaces the package logger. A nil logger silences the package.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = l
}
