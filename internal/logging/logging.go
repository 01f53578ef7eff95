package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"GameRegMonitor/internal/config"
)

// Log formats accepted in the logging config section.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// output is stderr so command output on stdout stays machine-readable.
var output io.Writer = os.Stderr

// New builds the application logger from the logging config section.
func New(cfg config.LoggingConfig) *slog.Logger {
	return newLogger(output, cfg)
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "regmonitor")
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
