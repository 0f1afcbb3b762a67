package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds the logging settings.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string

	// Output overrides where log records are written. Defaults to stdout.
	Output io.Writer
}

// Setup initializes the application's logging system from the provided
// configuration. It creates a structured JSON logger with the configured
// level, sets it as the process default, and returns it.
//
// An unrecognized level falls back to info with a warning rather than
// failing startup.
func Setup(cfg Config) *slog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, ok := parseLevel(cfg.Level)
	if !ok {
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLevel maps a level name to its slog value, case-insensitively.
// Unknown names yield info and false.
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
