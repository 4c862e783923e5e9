package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logger type passed between packages.
type Logger = zerolog.Logger

// NewLogger builds the service logger: JSON on stdout, human-readable console
// output and debug level in development, warnings only for CLI tools.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(appEnv, os.Stdout)
}

func newLogger(appEnv string, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch appEnv {
	case "development":
		level = zerolog.DebugLevel
	case "cli":
		level = zerolog.WarnLevel
	}

	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "archedit").
		Logger()
}

// Discard returns a logger that drops every event.
func Discard() *Logger {
	l := zerolog.New(io.Discard)
	return &l
}
