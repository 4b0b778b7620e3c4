package pipeline

import (
	"time"

	"view-router/internal/factory"
	"view-router/internal/mvc"
	"view-router/internal/routing"
)

// Activation is one run of the pipeline for one navigation. It is owned by
// the router's event loop; read it from other goroutines only after it
// reached a terminal state.
type Activation struct {
	ID         string                      `json:"id"`
	Generation uint64                      `json:"generation"`
	Requested  string                      `json:"requested"`
	Token      routing.NavigationToken     `json:"-"`
	Route      *routing.RouteConfig        `json:"-"`
	Instance   *factory.ControllerInstance `json:"-"`
	Redirects  []string                    `json:"redirects,omitempty"`
	State      State                       `json:"state"`
	Trace      []Step                      `json:"trace"`
	Err        error                       `json:"-"`
	StartedAt  time.Time                   `json:"started_at"`
	Duration   time.Duration               `json:"duration"`

	shellCfg *routing.ShellConfig
	shell    mvc.Shell
	entered  time.Time
	finished bool
	done     func(*Activation)
}

// Cached reports whether the activated controller came from the cache.
func (a *Activation) Cached() bool {
	return a.Instance != nil && a.Instance.Cached
}

// Final returns the token that was activated after redirects.
func (a *Activation) Final() string {
	if n := len(a.Redirects); n > 0 {
		return a.Redirects[n-1]
	}
	return a.Requested
}

func (a *Activation) enter(s State) {
	now := time.Now()
	if a.State != StateIdle || !a.entered.IsZero() {
		a.Trace = append(a.Trace, Step{State: a.State, Duration: now.Sub(a.entered)})
	}
	a.State = s
	a.entered = now
}
