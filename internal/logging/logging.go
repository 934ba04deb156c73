// Package logging configures the global zerolog logger for the CLI.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup routes logs to stderr with a level derived from the repeated -v
// flag: warnings by default, -v for info, -vv for debug.
func Setup(verbosity int) {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
