// Package logging builds the service's slog logger from configuration:
// a severity floor and a text or JSON output format.
package logging

import (
	"fmt"
	"io"
	"log/slog"
)

// New creates a logger writing to w. The format selects between a text
// handler for local development and a JSON handler for aggregated logs.
func New(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level.slogLevel(),
	}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Level is a named severity floor; records below it are discarded.
type Level string

// Accepted severity levels, lowest to highest.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Validate rejects levels outside the accepted set.
func (l Level) Validate() error {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l)
	}
}

// slogLevel maps the named level onto slog's numeric scale, treating
// anything unrecognized as info.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Format names a log output encoding.
type Format string

// Accepted output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Validate rejects formats outside the accepted set.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", f)
	}
}
