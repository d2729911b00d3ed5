/*-------------------------------------------------------------------------
 *
 * Bigtime Analytics Agent
 *
 * Copyright (c) 2026, the Bigtime Analytics Agent authors
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package logging provides structured leveled logging for all components.
// Log records go to stderr so that the indexer's progress output on stdout
// stays machine-readable.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variable to control log level
const envLogLevel = "BIGTIME_LOG_LEVEL"

var logger zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(parseLevel(os.Getenv(envLogLevel)))
}

// parseLevel maps a level name to a zerolog level. Unknown or empty names
// default to warn so routine operation stays quiet.
func parseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// SetLevel overrides the minimum level to output.
func SetLevel(name string) {
	logger = logger.Level(parseLevel(name))
}

func emit(ev *zerolog.Event, message string, keyvals []interface{}) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, keyvals[i+1])
	}
	ev.Msg(message)
}

// Debug logs a debug-level message with structured key-value fields.
func Debug(message string, keyvals ...interface{}) {
	emit(logger.Debug(), message, keyvals)
}

// Info logs an info-level message with structured key-value fields.
func Info(message string, keyvals ...interface{}) {
	emit(logger.Info(), message, keyvals)
}

// Warn logs a warning-level message with structured key-value fields.
func Warn(message string, keyvals ...interface{}) {
	emit(logger.Warn(), message, keyvals)
}

// Error logs an error-level message with structured key-value fields.
func Error(message string, keyvals ...interface{}) {
	emit(logger.Error(), message, keyvals)
}
