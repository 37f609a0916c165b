// Package logger configures the zerolog logger used for the -v
// diagnostic output. Logs go to stderr so they never mix with the
// response on stdout.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a console-format logger writing to stderr. The default
// level is warn; verbose raises it to debug.
func New(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards all output, for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
