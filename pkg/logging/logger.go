// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Component names used across the module.
const (
	ComponentClient = "datatable-client"
	ComponentCache  = "page-cache"
	ComponentRuns   = "run-tracker"
	ComponentViewer = "viewer"
	ComponentServer = "tableview"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to zerolog.Level. Unknown names map to
// info.
func ParseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Page cache hit/miss, cache key, skipped writes
//   - Stale viewer results discarded
//   - Run id unchanged on startup
//
// Info: Normal operation events
//   - Run change detected, cache cleared
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Page fetch failures (network, invalid data)
//   - Cache write errors and quota rejections
//   - Corrupt cache entries dropped
//
// Error: Error conditions requiring attention
//   - Run store unavailable
//   - Configuration errors
//
// Context Fields:
//   - dataset: dataset identifier
//   - page, page_size: requested page
//   - key: page cache key
//   - status_code: HTTP status code
//   - duration: request duration
//   - error_class: network or malformed
//   - run_id: current run identifier
//   - seq: viewer load sequence number
