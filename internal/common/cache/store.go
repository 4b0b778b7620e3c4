package cache

import (
	"context"
	"sort"
)

// InstanceStore keeps live objects for the lifetime of the process, keyed by a
// cache-safe string. Entries never expire; they leave only through Delete or
// Clear. Values are stored by reference so identity is preserved.
type InstanceStore[T any] struct {
	local *LocalCache
}

// NewInstanceStore creates an empty store without a janitor goroutine.
func NewInstanceStore[T any]() *InstanceStore[T] {
	return &InstanceStore[T]{local: NewLocalCache(NoExpiration, 0)}
}

// Get returns the instance stored under key.
func (s *InstanceStore[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := s.local.Get(context.Background(), key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Put stores instance under key, replacing any previous entry.
func (s *InstanceStore[T]) Put(key string, instance T) {
	_ = s.local.Set(context.Background(), key, instance, NoExpiration)
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *InstanceStore[T]) Delete(key string) {
	_ = s.local.Delete(context.Background(), key)
}

// Clear removes every entry.
func (s *InstanceStore[T]) Clear() {
	_ = s.local.Clear(context.Background())
}

// Keys returns the stored keys in sorted order.
func (s *InstanceStore[T]) Keys() []string {
	keys, _ := s.local.Keys(context.Background(), "")
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored instances.
func (s *InstanceStore[T]) Len() int {
	return s.local.Len()
}
