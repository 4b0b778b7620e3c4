package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
)

// BreakerConfig configures the circuit breaker of a Guarded recorder.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures int
	// Timeout is how long the breaker stays open before it lets one call through
	Timeout time.Duration
}

// DefaultBreakerConfig returns the breaker settings used for the Redis tracker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// Guarded passes Track calls to a Recorder through a circuit breaker. While
// the breaker is open Track fails immediately and the recorder is not called.
type Guarded struct {
	next    Recorder
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

// NewGuarded wraps next. Invalid config values fall back to the defaults.
func NewGuarded(next Recorder, config BreakerConfig, logger logging.Logger) *Guarded {
	if logger == nil {
		logger = logging.NewNop()
	}
	defaults := DefaultBreakerConfig()
	if config.MaxFailures <= 0 {
		config.MaxFailures = defaults.MaxFailures
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	g := &Guarded{
		next:   next,
		logger: logger.WithFields(logging.String("component", "tracker")),
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tracker",
		MaxRequests: 1,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("Circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()))
		},
	})
	return g
}

// Track records event unless the breaker is open.
func (g *Guarded) Track(ctx context.Context, event Event) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, g.next.Track(ctx, event)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.InternalError(fmt.Sprintf("tracker circuit breaker is %s", g.State()), err)
	}
	return err
}

// Stats reads the recorder directly; reads never trip the breaker.
func (g *Guarded) Stats(ctx context.Context) (Stats, error) {
	return g.next.Stats(ctx)
}

// State returns "closed", "half-open" or "open".
func (g *Guarded) State() string {
	return g.breaker.State().String()
}

// Check fails while the breaker is open. It is used as a health check.
func (g *Guarded) Check() error {
	if g.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("tracker circuit breaker is open")
	}
	return nil
}
