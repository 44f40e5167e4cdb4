// Package logging configures the process-wide slog handler.
// The API server uses the JSON handler for log aggregators; the automation
// CLI uses the colored tint handler for humans watching a terminal.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a config string onto a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SetupJSON installs a JSON slog handler writing to stdout as the default
// logger and returns it.
func SetupJSON(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// SetupConsole installs a colored tint handler writing to stderr as the
// default logger and returns it.
func SetupConsole(level slog.Level) *slog.Logger {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return logger
}
