// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New constructs a zerolog logger at the given level. Unknown or empty levels
// fall back to info. pretty enables the human-readable console writer for
// local development.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
