package navigation

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running router.
	ErrAlreadyRunning = errors.New("router is already running")
	// ErrNotRunning is returned when the router is not started.
	ErrNotRunning = errors.New("router is not running")
	// ErrStopped completes navigations still in flight when the router stops.
	ErrStopped = errors.New("router stopped before the navigation settled")
)

// RoutingError is the last token the error route absorbed and why.
type RoutingError struct {
	Token string
	Err   error
}

func (e *RoutingError) Error() string {
	return "route " + e.Token + ": " + e.Err.Error()
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}
