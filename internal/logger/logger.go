// Package logger configures the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"chatrelay/internal/config"
)

// previewRunes bounds how much user text ends up in a log line.
const previewRunes = 48

// New builds a slog.Logger from the logging section of the config.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// Init builds the logger, installs it as the slog default and logs startup.
func Init(cfg config.LoggingConfig) *slog.Logger {
	l := New(cfg, os.Stdout)
	slog.SetDefault(l)
	l.Info("startup",
		slog.String("component", "app"),
		slog.String("go_version", runtime.Version()),
		slog.String("log_level", ParseLevel(cfg.Level).String()),
	)
	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

// Preview shortens user text for logging.
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	r := []rune(s)
	return string(r[:previewRunes]) + "…"
}
