// Package logging configures structured logging for debtbook.
//
// Usage:
//
//	logging.Setup()                                // LOG_LEVEL and LOG_FORMAT from env
//	logging.SetupWithLevel(slog.LevelDebug, "")     // explicit level override
//	logger := logging.New(os.Stderr, "warn", "json") // a logger without touching the default
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
//	LOG_FORMAT: text (colored, default) or json
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures the default logger from LOG_LEVEL and LOG_FORMAT.
func Setup() *slog.Logger {
	return SetupWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")), os.Getenv("LOG_FORMAT"))
}

// SetupWithLevel configures the default logger at the given level and
// format and returns it.
func SetupWithLevel(level slog.Level, format string) *slog.Logger {
	out := io.Writer(os.Stderr)
	if isJSON(format) {
		out = os.Stdout
	}
	logger := slog.New(newHandler(out, level, format))
	slog.SetDefault(logger)
	return logger
}

// New returns a logger writing to w. It does not change the default logger.
func New(w io.Writer, level, format string) *slog.Logger {
	return slog.New(newHandler(w, ParseLevel(level), format))
}

func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if isJSON(format) {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

func isJSON(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), "json")
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
