// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

type Config struct {
	Level   string
	NoColor bool
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", s)
	}
}

// New returns a tint logger writing to w.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
	})), nil
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(w io.Writer, cfg Config) (*slog.Logger, error) {
	l, err := New(w, cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}
