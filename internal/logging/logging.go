// Package logging holds the process-wide zerolog logger for the CLI tools.
// Logs go to stderr so stdout stays clean for command output.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = newLogger(false, false)

func newLogger(verbose, jsonOut bool) zerolog.Logger {
	var output io.Writer = os.Stderr
	if !jsonOut {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// Init configures the package logger. Verbose enables debug events; jsonOut
// switches from the pretty console writer to JSON lines.
func Init(verbose, jsonOut bool) {
	logger = newLogger(verbose, jsonOut)
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	return logger.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	return logger.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	return logger.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	return logger.Error()
}

// Logger returns the underlying zerolog.Logger for integrations
func Logger() zerolog.Logger {
	return logger
}
