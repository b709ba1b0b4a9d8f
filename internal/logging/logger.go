// Package logging defines the structured-logging interface used across the
// client. Two backends are provided: log/slog and zerolog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key-value pairs, e.g.:
//
//	log.Info(ctx, "bootstrap finished", "status", status)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}

// Supported values of the log format setting.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a Logger writing to w. "text" and "json" use slog handlers,
// "console" uses zerolog's human-friendly console writer.
func New(format string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil))), nil
	case FormatJSON:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))), nil
	case FormatConsole:
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).With().Timestamp().Logger()
		return NewZerologLogger(zl), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewZerologLogger(zerolog.Nop())
}
