// Package logging provides structured logging types and interfaces
package logging

import (
	"context"
	"io"
	"strings"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// DebugLevel is the detailed navigation trace: one entry per pipeline step
	DebugLevel LogLevel = iota
	// InfoLevel is the simple navigation trace: one entry per navigation
	InfoLevel
	// WarnLevel is for recoverable navigation failures
	WarnLevel
	// ErrorLevel is for fatal navigation failures
	ErrorLevel
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// Logger defines the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	WithFields(fields ...Field) Logger
	WithContext(ctx context.Context) Logger
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  LogLevel
	Output io.Writer
	Name   string
	JSON   bool
}

// ParseLevel converts a string to a LogLevel, defaulting to InfoLevel.
// "detailed" and "simple" select the debug and info traces respectively.
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG", "DETAILED":
		return DebugLevel
	case "INFO", "SIMPLE":
		return InfoLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// DefaultLogConfig returns default logger configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level: InfoLevel,
		Name:  "navigation",
	}
}
