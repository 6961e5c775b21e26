package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects and tunes a Logger implementation.
type Options struct {
	Backend string // "slog" (default) or "logrus"
	Format  string // "text" (default) or "json"
	Level   string // debug, info, warn, error
}

// New builds a Logger writing to w.
func New(w io.Writer, o Options) Logger {
	switch strings.ToLower(o.Backend) {
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(logrusLevel(o.Level))
		if strings.EqualFold(o.Format, "json") {
			l.SetFormatter(&logrus.JSONFormatter{})
		} else {
			l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
		}
		return NewLogrusLogger(l)
	default:
		opts := &slog.HandlerOptions{Level: slogLevel(o.Level)}
		var h slog.Handler
		if strings.EqualFold(o.Format, "json") {
			h = slog.NewJSONHandler(w, opts)
		} else {
			h = slog.NewTextHandler(w, opts)
		}
		return NewSlogLogger(slog.New(h))
	}
}

func slogLevel(s string) slog.Level {
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

func logrusLevel(s string) logrus.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
