// Package logger builds the zerolog logger shared by all components.
package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// New creates a logger writing to w. Format "text" produces human-readable
// console lines; anything else produces JSON. An unknown level falls back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	out := w
	if format == "text" {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	return zerolog.New(out).Level(logLevel).With().Timestamp().Logger()
}
