package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	core "github.com/evsim/powertrain/core/logger"
)

// Logger is the logging interface the rest of the module consumes.
type Logger = core.Logger

// ZerologLogger implements core logger.Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// New creates a ZerologLogger writing to stdout. The APP_ENV environment
// variable selects the output format: "dev" enables the console writer,
// anything else emits JSON. All logs include the provided component field.
func New(component string) core.Logger {
	return NewWithWriter(component, os.Stdout)
}

// NewWithWriter creates a ZerologLogger writing to the given writer. Used by
// tests to capture output.
func NewWithWriter(component string, w io.Writer) core.Logger {
	env := strings.ToLower(os.Getenv("APP_ENV"))
	var z zerolog.Logger
	if env == "dev" {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		z = zerolog.New(cw).With().Timestamp().Str("component", component).Logger()
	} else {
		z = zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	}
	return &ZerologLogger{log: z}
}

// WithLevel returns a copy of the logger restricted to the given minimum
// level ("debug", "info", "warn", "error").
func (l *ZerologLogger) WithLevel(level string) core.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return l
	}
	return &ZerologLogger{log: l.log.Level(lvl)}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
