// Package factory provides the generic creator-registry plus instance cache
// shared by the controller, composite and shell factories.
package factory

import (
	"fmt"

	"view-router/internal/common/cache"
	"view-router/internal/common/errors"
	"view-router/internal/common/registry"
	"view-router/internal/routing"
)

// Factory pairs a registry of creators of type C with a cache of instances of
// type T. Both are keyed by routing.TypeID; the cache uses TypeID.Key.
type Factory[C any, T any] struct {
	kind     string
	creators *registry.Registry[routing.TypeID, C]
	cache    *cache.InstanceStore[T]
}

// NewFactory creates a new generic factory. kind names the produced objects
// in error messages ("controller", "composite", "shell").
func NewFactory[C any, T any](kind string) *Factory[C, T] {
	return &Factory[C, T]{
		kind:     kind,
		creators: registry.New[routing.TypeID, C](),
		cache:    cache.NewInstanceStore[T](),
	}
}

// Kind returns the name of the produced objects
func (f *Factory[C, T]) Kind() string {
	return f.kind
}

// Register associates a type with its creator
func (f *Factory[C, T]) Register(id routing.TypeID, creator C) error {
	if id.IsZero() {
		return errors.ConfigError(fmt.Sprintf("%s creator registered without a type", f.kind))
	}
	return f.creators.Register(id, creator)
}

// Creator returns the creator registered for id
func (f *Factory[C, T]) Creator(id routing.TypeID) (C, bool) {
	creator, err := f.creators.Get(id)
	if err != nil {
		var zero C
		return zero, false
	}
	return creator, true
}

// IsRegistered reports whether a creator exists for id
func (f *Factory[C, T]) IsRegistered(id routing.TypeID) bool {
	return f.creators.IsRegistered(id)
}

// Types returns the registered types in registration order
func (f *Factory[C, T]) Types() []routing.TypeID {
	return f.creators.Keys()
}

// Cached returns the instance cached under key
func (f *Factory[C, T]) Cached(key string) (T, bool) {
	return f.cache.Get(key)
}

// Store caches instance under key
func (f *Factory[C, T]) Store(key string, instance T) {
	f.cache.Put(key, instance)
}

// Evict removes the instance cached under key
func (f *Factory[C, T]) Evict(key string) {
	f.cache.Delete(key)
}

// Clear removes every cached instance. Registered creators are kept.
func (f *Factory[C, T]) Clear() {
	f.cache.Clear()
}

// CachedKeys returns the keys of cached instances in sorted order
func (f *Factory[C, T]) CachedKeys() []string {
	return f.cache.Keys()
}
