package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"

	"github.com/crmarques/boxctl/config"
	"github.com/crmarques/boxctl/faults"
)

const (
	DefaultLevel = "info"
	// maxVerbosity lets V(2) reach zerolog's trace level; the per-logger level
	// decides what is actually written.
	maxVerbosity = 2
)

type Options struct {
	Level  string
	Format string
	// Debug forces at least debug level.
	Debug   bool
	NoColor bool
	Output  io.Writer
}

func init() {
	zerologr.NameFieldName = "logger"
	zerologr.SetMaxV(maxVerbosity)
}

// New builds a logr logger backed by zerolog. V(1) maps to debug and V(2) to trace.
func New(opts Options) (logr.Logger, error) {
	level, err := parseLevel(opts.Level, opts.Debug)
	if err != nil {
		return logr.Discard(), err
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", config.LogFormatConsole:
		output = zerolog.ConsoleWriter{
			Out:        output,
			NoColor:    opts.NoColor,
			TimeFormat: time.RFC3339,
		}
	case config.LogFormatJSON:
	default:
		return logr.Discard(), faults.NewTypedError(
			faults.ValidationError,
			"log format must be one of console, json",
			nil,
		)
	}

	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return zerologr.New(&zl), nil
}

func parseLevel(raw string, debug bool) (zerolog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		value = DefaultLevel
	}

	level, err := zerolog.ParseLevel(value)
	if err != nil || value == "fatal" || value == "panic" || value == "disabled" {
		return zerolog.NoLevel, faults.NewTypedError(
			faults.ValidationError,
			"log level must be one of trace, debug, info, warn, error",
			err,
		)
	}
	if debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	return level, nil
}
