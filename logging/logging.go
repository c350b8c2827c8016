// Package logging sets up the process-wide zerolog logger used by the
// supervisor and every engine child logger it derives. Grounded on
// domino14-macondo/cmd/shell's ConsoleWriter-plus-level setup.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the base logger for a tournament run: human-readable
// console output on stderr, debug level when debug is true, info level
// otherwise.
func New(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
