// Package logging configures zerolog for the fetcher: JSON lines on
// stderr for services, optional human-readable console output for
// interactive CLI runs.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity.
type LogLevel string

// Levels in increasing severity.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// levelNames maps accepted level spellings onto zerolog levels.
var levelNames = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum severity to emit.
	Level LogLevel

	// Pretty switches from JSON lines to console output.
	Pretty bool

	// Output receives the log stream. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the baseline configuration: info-level JSON on
// stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup installs cfg as the process-wide logger and returns it. Packages
// derive component loggers from it with NewLogger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// parseLevel resolves a level name, defaulting to info for unknown
// spellings.
func parseLevel(level LogLevel) zerolog.Level {
	if l, ok := levelNames[strings.ToLower(string(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// NewLogger derives a component-tagged logger from the global one.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Per-attempt request detail (attempt number, backoff delay)
//   - Cache operations (hit/miss, key, TTL)
//   - Pagination flow (next URL, page number)
//
// Info: Normal operation events
//   - Run start/finish with record and page counts
//   - Successful page fetches
//   - Watermark advances
//
// Warn: Warning conditions that don't prevent operation
//   - Retryable failures (429, 5xx, connection faults)
//   - Rate limit cool-off active
//   - Cache errors (fallback to direct request)
//
// Error: Error conditions requiring attention
//   - Fatal HTTP responses (4xx other than 429)
//   - Retry budget exhausted
//   - Malformed response bodies
//   - Configuration errors
//
// Context Fields:
//   - url: request URL
//   - status_code: HTTP status code
//   - attempt: attempt number within the retry budget
//   - delay: backoff delay before the next attempt
//   - page: page number within a paginated run
//   - records: record count
//   - watermark: current date_filed high watermark
//   - run_id: correlation id for a CLI run
