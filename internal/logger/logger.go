// Package logger builds the zerolog logger used across the application.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// Options configures the logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error (default info).
	Level string
	// File is an optional log file, rotated by size.
	File string
	// MaxSize is the size in megabytes at which the log file is rotated.
	MaxSize int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAge is the number of days rotated files are kept.
	MaxAge int
	// Console receives human readable output (default os.Stderr).
	Console io.Writer
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return parsed
}

// New creates a logger writing to the console and, if configured, to a
// rotating file. The returned closer releases the file.
func New(opts Options) (zerolog.Logger, io.Closer) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"},
	}

	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
		}

		writers = append(writers, file)
		closer = file
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()

	return log, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
