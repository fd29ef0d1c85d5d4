// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger. Pretty console output unless json is
// requested; the level string follows zerolog's ParseLevel.
func Setup(level string, json bool) zerolog.Logger {
	return New(os.Stderr, level, json)
}

// New builds a logger writing to w, for callers that redirect output.
func New(w io.Writer, level string, json bool) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}

	var out io.Writer = w
	if !json {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
