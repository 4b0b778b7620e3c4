package navigation

import (
	"context"
	"sync"
	"time"

	"view-router/internal/pipeline"
)

// Result is the outcome of one navigation.
type Result struct {
	ID         string          `json:"id"`
	Requested  string          `json:"requested"`
	Final      string          `json:"final,omitempty"`
	Route      string          `json:"route,omitempty"`
	Controller string          `json:"controller,omitempty"`
	Cached     bool            `json:"cached"`
	Redirects  []string        `json:"redirects,omitempty"`
	State      pipeline.State  `json:"state"`
	Trace      []pipeline.Step `json:"-"`
	Err        error           `json:"-"`
	Duration   time.Duration   `json:"duration"`
}

// Settled reports whether the navigation activated its controller.
func (r *Result) Settled() bool {
	return r.Err == nil && r.State == pipeline.StateSettled
}

func resultOf(a *pipeline.Activation) *Result {
	res := &Result{
		ID:        a.ID,
		Requested: a.Requested,
		Redirects: append([]string(nil), a.Redirects...),
		State:     a.State,
		Trace:     append([]pipeline.Step(nil), a.Trace...),
		Err:       a.Err,
		Duration:  a.Duration,
		Cached:    a.Cached(),
	}
	if a.Err == nil {
		res.Final = a.Token.Raw
		if res.Final == "" {
			res.Final = a.Final()
		}
	}
	if a.Route != nil {
		res.Route = "/" + a.Route.ShellID + a.Route.Pattern()
	}
	if a.Instance != nil {
		res.Controller = a.Instance.Type.String()
	}
	return res
}

// Navigation is the handle returned for a queued navigation.
type Navigation struct {
	ID    string
	Token string

	once   sync.Once
	done   chan struct{}
	result *Result
}

func newNavigation(id, token string) *Navigation {
	return &Navigation{ID: id, Token: token, done: make(chan struct{})}
}

// Done is closed when the navigation settled or aborted.
func (n *Navigation) Done() <-chan struct{} {
	return n.done
}

// Result returns the outcome, or nil while the navigation is in flight.
func (n *Navigation) Result() *Result {
	select {
	case <-n.done:
		return n.result
	default:
		return nil
	}
}

// Wait blocks until the navigation completes or ctx is done. The returned
// error is the navigation's own error.
func (n *Navigation) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-n.done:
		return n.result, n.result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (n *Navigation) complete(res *Result) {
	n.once.Do(func() {
		n.result = res
		close(n.done)
	})
}
