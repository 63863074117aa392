// Package logger builds the application logger. The logger is constructed
// once and passed explicitly to the components that log; there is no global
// logging state.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// New creates a logger writing to w at the given level. When color is true
// the output uses the tint handler, otherwise a plain text handler.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	if color {
		return slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config log level string onto a slog.Level. Unknown
// values fall back to info.
func ParseLevel(s string) slog.Level {
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

// WantColor reports whether colored output should be used: never when the
// NO_COLOR convention is set or w is not a terminal.
func WantColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
