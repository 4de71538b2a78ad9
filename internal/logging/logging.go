// Package logging builds the process logger: colorized text for terminals,
// JSON for anything that ships logs elsewhere.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/carbonscope/co2-diagnostics/internal/config"
)

// New builds a logger from the configured level and format and tags every
// record with the application name.
func New(cfg *config.AppConfig, appName string) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(cfg.LogFormat, "json") {
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
		return slog.New(h).With("app", appName), nil
	}

	h := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		AddSource:  level == slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h).With("app", appName), nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q (allowed: debug, info, warn, error)", s)
	}
}
