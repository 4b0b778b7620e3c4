// Package cache provides the storage primitives behind the router's caches.
//
// This package wraps battle-tested caching libraries:
//   - github.com/patrickmn/go-cache for local in-memory storage
//   - github.com/go-redis/redis/v8 for shared Redis storage
//
// It provides:
//
// 1. InstanceStore - process-lifetime, identity-preserving store of live
// controllers, composites and shells (go-cache with no expiration)
//
// 2. Local Cache - in-memory key/value cache with counters, used by the local
// navigation tracker
//
// 3. Redis Cache - Redis-backed key/value cache with counters, used when
// navigation statistics are shared between hosts
//
// Usage:
//
//	store := cache.NewInstanceStore[mvc.Controller]()
//	store.Put(id.Key(), controller)
//	c, ok := store.Get(id.Key())
//
//	counters, err := cache.New(cache.Config{Type: cache.TypeRedis, RedisClient: rdb, KeyPrefix: "nav:"})
//	hits, err := counters.Incr(ctx, "hits:users")
package cache
