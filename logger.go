// Package recruitprefs provides default logging implementations.
package recruitprefs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel defines the various log levels.
// These correspond to slog's levels.
type LogLevel int

// Log level constants, mirroring slog levels for internal mapping.
const (
	LogLevelDebug LogLevel = LogLevel(slog.LevelDebug) // Debug messages
	LogLevelInfo  LogLevel = LogLevel(slog.LevelInfo)  // Informational messages
	LogLevelWarn  LogLevel = LogLevel(slog.LevelWarn)  // Warning messages
	LogLevelError LogLevel = LogLevel(slog.LevelError) // Error messages
)

// ParseLogLevel maps "debug", "info", "warn"/"warning" and "error" to a LogLevel.
// Anything else yields LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// SlogLogger implements Logger on top of log/slog with a dynamically adjustable level.
type SlogLogger struct {
	slogger  *slog.Logger
	levelVar *slog.LevelVar
}

// NewDefaultLogger returns a JSON logger writing to os.Stderr at LogLevelInfo.
func NewDefaultLogger() *SlogLogger {
	return NewLogger(os.Stderr, LogLevelInfo)
}

// NewLogger returns a JSON logger writing to w at the given level.
func NewLogger(w io.Writer, level LogLevel) *SlogLogger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(level))

	return &SlogLogger{
		slogger:  slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar})),
		levelVar: levelVar,
	}
}

func newDefaultLogger() Logger {
	return NewDefaultLogger()
}

// Debug logs a debug-level message.
func (l *SlogLogger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs an info-level message.
func (l *SlogLogger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs a warning-level message.
func (l *SlogLogger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs an error-level message.
func (l *SlogLogger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// SetLevel changes the logging level dynamically.
func (l *SlogLogger) SetLevel(level LogLevel) {
	if l.levelVar != nil {
		l.levelVar.Set(slog.Level(level))
	}
}

// RedactEmail keeps the first rune of the local part and the domain.
func RedactEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[redacted]"
	}
	if parts[0] == "" {
		return "***@" + parts[1]
	}
	runes := []rune(parts[0])
	return string(runes[0]) + "***@" + parts[1]
}

// RedactName keeps only the first rune of name.
func RedactName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(name)
	return string(runes[0]) + "***"
}
