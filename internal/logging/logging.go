// Package logging builds the shared hclog logger used across tomoscan.
//
// Level resolution order: explicit level argument (usually the --log-level
// flag), then TOMOSCAN_LOG_LEVEL, then "info". Output is stderr so that
// stdout stays clean for locators, JSON events and reports.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel overrides the log level when no flag is given
	EnvLogLevel = "TOMOSCAN_LOG_LEVEL"

	// EnvLogPath redirects log output to a file (append mode)
	EnvLogPath = "TOMOSCAN_LOG_PATH"

	// EnvJSONLog forces JSON-formatted log records when set to "1"
	EnvJSONLog = "TOMOSCAN_JSON_LOG"
)

// New creates the root logger. Subsystems derive their own via Named.
func New(level string) hclog.Logger {
	return NewWithOutput(level, output())
}

// NewWithOutput creates the root logger writing to w, ignoring
// TOMOSCAN_LOG_PATH. Used when the terminal belongs to the TUI and log
// lines have to flow through it instead of raw stderr.
func NewWithOutput(level string, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "tomoscan",
		Level:      hclog.LevelFromString(ResolveLevel(level)),
		JSONFormat: os.Getenv(EnvJSONLog) == "1",
		Output:     w,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// ResolveLevel picks the effective log level name. Unknown names fall
// back to "info" since hclog.LevelFromString would return NoLevel and
// disable filtering entirely.
func ResolveLevel(level string) string {
	if level == "" {
		level = os.Getenv(EnvLogLevel)
	}
	if level == "" {
		return "info"
	}
	if hclog.LevelFromString(level) == hclog.NoLevel {
		return "info"
	}
	return level
}

func output() io.Writer {
	if path := os.Getenv(EnvLogPath); path != "" {
		if file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			return file
		}
	}
	return os.Stderr
}
