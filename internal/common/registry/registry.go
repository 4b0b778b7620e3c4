// Package registry provides a generic, thread-safe registry keyed by any
// comparable identifier.
//
// The router uses it to hold controller, composite and shell creators keyed by
// their routing.TypeID:
//
//	creators := registry.New[routing.TypeID, ControllerCreator]()
//	err := creators.Register(routing.NewTypeID("app.UsersController"), creator)
//	creator, err := creators.Get(id)
package registry

import (
	"fmt"
	"sync"

	"view-router/internal/common/errors"
)

// Registry provides a generic, thread-safe registry of values keyed by K.
// Registration order is preserved by Keys.
type Registry[K comparable, V any] struct {
	entries map[K]V
	order   []K
	mu      sync.RWMutex
}

// New creates a new empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// Register adds value under key. Registering the same key twice is a
// configuration error.
func (r *Registry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return errors.ConfigError(fmt.Sprintf("%v already registered", key))
	}
	r.entries[key] = value
	r.order = append(r.order, key)
	return nil
}

// Get retrieves the value registered under key.
// Returns a not_found error if nothing is registered.
func (r *Registry[K, V]) Get(key K) (V, error) {
	r.mu.RLock()
	value, exists := r.entries[key]
	r.mu.RUnlock()

	if !exists {
		var zero V
		return zero, errors.NotFoundError(fmt.Sprintf("registration %v", key))
	}
	return value, nil
}

// IsRegistered checks if key is registered.
func (r *Registry[K, V]) IsRegistered(key K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.entries[key]
	return exists
}

// Keys returns the registered keys in registration order.
// The returned slice is a copy and safe to modify.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// Count returns the number of registrations.
func (r *Registry[K, V]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes all registrations.
func (r *Registry[K, V]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[K]V)
	r.order = nil
}
