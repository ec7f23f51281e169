// Package logging builds the charmbracelet/log loggers used across
// VoiceIce.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// Env is the logging block read from the environment before flags and
// config files are parsed, so startup itself can be traced.
type Env struct {
	Level     string `env:"VOICEICE_LOG_LEVEL" envDefault:"warn"`
	File      string `env:"VOICEICE_LOG_FILE"`
	Timestamp bool   `env:"VOICEICE_LOG_TIMESTAMP" envDefault:"false"`
}

// FromEnv parses the logging environment.
func FromEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("logging environment: %w", err)
	}

	return e, nil
}

// Options selects a logger's destination and verbosity.
type Options struct {
	Level string
	// File, when set, receives timestamped output instead of the writer.
	File      string
	Timestamp bool
}

// New returns a logger writing to w, or to Options.File when set. The
// returned closer releases the file and is a no-op otherwise.
func New(w io.Writer, opts Options) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", opts.Level, err)
	}

	var closer io.Closer = nopCloser{}

	reportTime := opts.Timestamp

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log directory: %w", err)
		}

		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}

		w, closer, reportTime = f, f, true
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "voiceice",
		ReportTimestamp: reportTime,
		TimeFormat:      time.RFC3339,
	})

	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
