// Package logging builds the zerolog logger shared by the CLI commands.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger at the given level. An unknown or empty
// level means info; verbose forces debug.
func New(out io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}

	w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
