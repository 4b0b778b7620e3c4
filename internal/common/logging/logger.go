// Package logging provides structured logging using zap
package logging

import (
	"context"
	"fmt"
	"time"
)

// contextKey scopes values this package reads from a context.Context.
type contextKey string

// NavigationIDKey carries the correlation id of the navigation being processed.
const NavigationIDKey contextKey = "navigation_id"

// NewDefaultLogger creates a logger with default configuration using zap
func NewDefaultLogger() Logger {
	logger, err := NewZapLogger(DefaultLogConfig())
	if err != nil {
		panic(fmt.Sprintf("failed to initialize default zap logger: %v", err))
	}
	return logger
}

// New creates a logger at the given level name ("debug", "detailed", "info", ...).
func New(level string) (Logger, error) {
	config := DefaultLogConfig()
	config.Level = ParseLevel(level)
	return NewZapLogger(config)
}

// ContextWithNavigationID returns a context carrying the navigation correlation id.
func ContextWithNavigationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, NavigationIDKey, id)
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field
func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Uint64 creates an uint64 field, used for navigation generations
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error"
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field with any value
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
