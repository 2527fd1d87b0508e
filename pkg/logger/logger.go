package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level represents logging level
type Level = zerolog.Level

// Logger levels
const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string
	TimeFormat string
	Output     io.Writer
}

// ParseLevel falls back to info for empty or unknown level names
func ParseLevel(name string) Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return InfoLevel
	}
	return lvl
}

// New builds a zerolog logger. Format "console" gives human readable
// output, anything else writes JSON lines.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	out := cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", "ehr-api").
		Logger()
}

// Setup installs the logger as the process-wide zerolog logger
func Setup(cfg Config) zerolog.Logger {
	l := New(cfg)
	zerolog.TimeFieldFormat = cfg.TimeFormat
	if zerolog.TimeFieldFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	}
	log.Logger = l
	return l
}
