// Package errors defines the structured error kinds raised while resolving and
// activating navigation targets.
//
// Every error produced by the router is an *AppError carrying an ErrorType, so
// callers can branch on the kind of failure without string matching:
//
//	if errors.IsType(err, errors.ErrTypeRoutingInterception) {
//		// expected control flow, previous screen stays
//	}
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeMalformedToken is raised when a route token cannot be decomposed
	ErrTypeMalformedToken ErrorType = "malformed_token"
	// ErrTypeUnknownShell is raised when a token names a shell that is not configured
	ErrTypeUnknownShell ErrorType = "unknown_shell"
	// ErrTypeUnknownController is raised when no creator is registered for a type
	ErrTypeUnknownController ErrorType = "unknown_controller"
	// ErrTypeRouteNotFound is raised when no route pattern matches a token
	ErrTypeRouteNotFound ErrorType = "route_not_found"
	// ErrTypeRoutingInterception is the control-flow signal used by controllers and filters
	ErrTypeRoutingInterception ErrorType = "routing_interception"
	// ErrTypeRedirectLoop is raised when filters keep redirecting past the configured cap
	ErrTypeRedirectLoop ErrorType = "redirect_loop"
	// ErrTypeSuperseded marks a navigation overtaken by a newer one
	ErrTypeSuperseded ErrorType = "superseded"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeValidation represents validation errors
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// MalformedTokenError creates an error for a token that cannot be parsed
func MalformedTokenError(token, reason string) *AppError {
	return &AppError{
		Type:    ErrTypeMalformedToken,
		Message: fmt.Sprintf("malformed route token %q: %s", token, reason),
		Context: map[string]interface{}{"token": token},
	}
}

// UnknownShellError creates an error for a shell id missing from the shell table
func UnknownShellError(shellID string) *AppError {
	return &AppError{
		Type:    ErrTypeUnknownShell,
		Message: fmt.Sprintf("shell %q is not configured", shellID),
		Context: map[string]interface{}{"shell": shellID},
	}
}

// UnknownControllerError creates an error for a type without a registered creator
func UnknownControllerError(typeName string) *AppError {
	return &AppError{
		Type:    ErrTypeUnknownController,
		Message: fmt.Sprintf("no creator registered for %q", typeName),
		Context: map[string]interface{}{"type": typeName},
	}
}

// RouteNotFoundError creates an error for a token no route matches
func RouteNotFoundError(token string) *AppError {
	return &AppError{
		Type:    ErrTypeRouteNotFound,
		Message: fmt.Sprintf("no route matches %q", token),
		Context: map[string]interface{}{"token": token},
	}
}

// RoutingInterceptionError creates the signal a controller or filter raises to
// stop the current activation.
func RoutingInterceptionError(source, msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeRoutingInterception,
		Message: msg,
		Cause:   cause,
		Context: map[string]interface{}{"source": source},
	}
}

// RedirectLoopError creates an error describing the redirect chain that hit the cap
func RedirectLoopError(chain []string) *AppError {
	return &AppError{
		Type:    ErrTypeRedirectLoop,
		Message: fmt.Sprintf("redirect limit exceeded: %s", strings.Join(chain, " -> ")),
	}
}

// SupersededError creates the error a navigation completes with when a newer one started
func SupersededError(generation uint64) *AppError {
	return &AppError{
		Type:    ErrTypeSuperseded,
		Message: fmt.Sprintf("navigation %d superseded by a newer navigation", generation),
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is an AppError of errType
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return ErrTypeInternal
	}

	return appErr.Type
}

// IsFatal reports whether err is a configuration defect or an unabsorbed
// navigation failure the host application has to present.
func IsFatal(err error) bool {
	switch GetType(err) {
	case "", ErrTypeRoutingInterception, ErrTypeSuperseded:
		return false
	default:
		return true
	}
}

// Interception wraps err as a routing interception unless it already is one.
func Interception(source string, err error) error {
	if err == nil || IsType(err, ErrTypeRoutingInterception) {
		return err
	}
	return RoutingInterceptionError(source, "activation interrupted", err)
}
