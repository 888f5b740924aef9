// Package logging builds the zerolog logger shared by the CLI commands.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidLevel indicates a log level name zerolog does not know.
var ErrInvalidLevel = errors.New("invalid log level")

// Levels lists the accepted level names, most verbose first.
var Levels = []string{"debug", "info", "warn", "error", "disabled"}

// ParseLevel converts a level name to a zerolog.Level.
// An empty name selects warn.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.WarnLevel, nil
	}
	switch name {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off", "none":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("%q (valid: %s): %w", name, strings.Join(Levels, ", "), ErrInvalidLevel)
}

// New returns a console logger writing to w at the given level.
// Colors are disabled when noColor is set.
func New(w io.Writer, level zerolog.Level, noColor bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// NewJSON returns a logger emitting one JSON object per line.
func NewJSON(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
