package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want zerolog.Level
	}{
		{"default is info", Config{}, zerolog.InfoLevel},
		{"explicit level", Config{Level: "warn"}, zerolog.WarnLevel},
		{"bad level falls back to info", Config{Level: "loud"}, zerolog.InfoLevel},
		{"one -v", Config{Verbosity: 1}, zerolog.DebugLevel},
		{"two -v", Config{Verbosity: 2}, zerolog.TraceLevel},
		{"verbosity is capped", Config{Verbosity: 9}, zerolog.TraceLevel},
		{"verbosity lowers explicit level", Config{Level: "error", Verbosity: 1}, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNewConsole(t *testing.T) {
	logger := New(Config{Console: true, Verbosity: 1})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}
