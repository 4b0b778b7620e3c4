package testutil

import "errors"

// Common test errors
var (
	ErrDenied      = errors.New("access denied")
	ErrTestFailure = errors.New("test failure")
)
