// Package base provides embeddable defaults for controllers, composites and
// components.
package base

import (
	"fmt"
	"sync"

	"view-router/internal/common/errors"
	"view-router/internal/mvc"
)

// SetterFunc receives one route parameter value.
type SetterFunc func(value string) error

// Unit provides common functionality for controller and composite
// implementations: environment access, lifecycle state and named parameter
// setters. Embed it and override Bind or the lifecycle hooks as needed.
type Unit struct {
	mu      sync.RWMutex
	env     mvc.Env
	meta    mvc.Meta
	setters map[string]SetterFunc
	started bool
	active  bool
}

// Init stores the injected environment and activation metadata
func (u *Unit) Init(env mvc.Env, meta mvc.Meta) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.env = env
	u.meta = meta
}

// Env returns the injected environment
func (u *Unit) Env() mvc.Env {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.env
}

// Meta returns the activation metadata
func (u *Unit) Meta() mvc.Meta {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.meta
}

// Bind continues immediately
func (u *Unit) Bind(loader mvc.Loader) {
	loader.Continue()
}

// Accept registers the setter called for parameters bound to name
func (u *Unit) Accept(name string, fn SetterFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.setters == nil {
		u.setters = make(map[string]SetterFunc)
	}
	u.setters[name] = fn
}

// SetParameter dispatches value to the setter registered under name
func (u *Unit) SetParameter(name, value string) error {
	u.mu.RLock()
	fn, ok := u.setters[name]
	u.mu.RUnlock()

	if !ok {
		return errors.ValidationError(fmt.Sprintf("%s has no parameter setter %q", u.Meta().Type, name))
	}
	return fn(value)
}

// Start marks the unit as started
func (u *Unit) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.started = true
}

// Activate marks the unit as active
func (u *Unit) Activate() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.active = true
}

// Deactivate marks the unit as inactive
func (u *Unit) Deactivate() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.active = false
}

// Stop marks the unit as stopped
func (u *Unit) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.started = false
	u.active = false
}

// IsStarted returns whether Start ran and Stop did not
func (u *Unit) IsStarted() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.started
}

// IsActive returns whether the unit currently occupies a slot
func (u *Unit) IsActive() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.active
}

// Component provides no-op Bind and RemoveHandlers for components that wire
// no event handlers.
type Component struct{}

// Bind does nothing
func (Component) Bind() error { return nil }

// RemoveHandlers does nothing
func (Component) RemoveHandlers() {}

var (
	_ mvc.Controller = (*Unit)(nil)
	_ mvc.Composite  = (*Unit)(nil)
)
