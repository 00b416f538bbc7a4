// Package logging builds the process-wide zerolog logger from one explicit
// configuration struct passed in at startup, instead of a collection of
// mutable logger singletons.
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// Config selects the log destination format and threshold.
type Config struct {
	// Level is the base threshold ("trace".."error"); empty means "info".
	Level string
	// Verbosity counts -v flags; each step lowers the threshold, capped at
	// trace.
	Verbosity int
	// Console switches from JSON lines to the human console writer.
	Console bool
}

// New returns a configured logger writing to stderr, leaving stdout free
// for rendered command output.
func New(cfg Config) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	for i := 0; i < cfg.Verbosity && level > zerolog.TraceLevel; i++ {
		level--
	}

	return logger.Level(level)
}
