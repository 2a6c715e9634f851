// Package logging builds the slog loggers used across relay.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/minus-twelve/relay/types"
)

// New returns a text or JSON logger writing to w at the configured level.
func New(w io.Writer, cfg types.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LevelFromString(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString maps debug, info, warn and error (any case). Anything else
// is info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
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
