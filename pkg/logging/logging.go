// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.SetupWithLevel(cfg.LogLevel())   // server, level from config
//	logging.SetupQuiet(verbose)              // CLI, warnings only unless verbose
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a tint logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
	}))
}

// SetupWithLevel configures colored logging on stderr at the given level
// and returns the logger it installed as the default.
func SetupWithLevel(level slog.Level) *slog.Logger {
	logger := New(os.Stderr, level)
	slog.SetDefault(logger)
	return logger
}

// SetupQuiet configures logging for interactive commands, whose output
// should not be drowned in request logs.
func SetupQuiet(verbose bool) *slog.Logger {
	if verbose {
		return SetupWithLevel(slog.LevelDebug)
	}
	return SetupWithLevel(slog.LevelWarn)
}
