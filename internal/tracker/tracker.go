// Package tracker records settled navigations: a hit counter per route and
// a capped list of the most recent events.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"view-router/internal/common/cache"
	"view-router/internal/common/logging"
	"view-router/internal/redis"
)

// DefaultRecentLimit is the number of recent events kept when none is set.
const DefaultRecentLimit = 50

const hitPrefix = "hits:"

// Event describes one settled navigation.
type Event struct {
	NavigationID string        `json:"navigation_id"`
	Token        string        `json:"token"`
	Route        string        `json:"route"`
	Controller   string        `json:"controller"`
	Cached       bool          `json:"cached"`
	Redirects    int           `json:"redirects,omitempty"`
	Duration     time.Duration `json:"duration"`
	At           time.Time     `json:"at"`
}

// Tracker receives settled navigations.
type Tracker interface {
	Track(ctx context.Context, event Event) error
}

// Stats is a snapshot of the recorded navigations.
type Stats struct {
	Hits   map[string]int64 `json:"hits"`
	Recent []Event          `json:"recent"`
}

// RouteHits returns the routes ordered by hit count, highest first.
func (s Stats) RouteHits() []string {
	routes := make([]string, 0, len(s.Hits))
	for r := range s.Hits {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool {
		if s.Hits[routes[i]] != s.Hits[routes[j]] {
			return s.Hits[routes[i]] > s.Hits[routes[j]]
		}
		return routes[i] < routes[j]
	})
	return routes
}

// Recorder is a Tracker that can report what it recorded.
type Recorder interface {
	Tracker
	Stats(ctx context.Context) (Stats, error)
}

// RecentStore keeps the newest events.
type RecentStore interface {
	Push(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Counter tracks hits in a cache.Cache and recent events in a RecentStore.
type Counter struct {
	hits   cache.Cache
	recent RecentStore
	logger logging.Logger
}

// New creates a Counter.
func New(hits cache.Cache, recent RecentStore, logger logging.Logger) *Counter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Counter{
		hits:   hits,
		recent: recent,
		logger: logger.WithFields(logging.String("component", "tracker")),
	}
}

// NewLocal creates an in-memory tracker.
func NewLocal(limit int, logger logging.Logger) *Counter {
	return New(cache.NewLocalCache(cache.NoExpiration, 0), NewMemoryRecent(limit), logger)
}

// NewRedis creates a tracker backed by Redis. Keys are prefixed with prefix.
func NewRedis(client *redis.Client, prefix string, limit int, logger logging.Logger) *Counter {
	return New(cache.NewRedisCache(client.Raw(), prefix), NewRedisRecent(client, prefix+"recent", limit), logger)
}

// Track counts the event's route and records the event.
func (c *Counter) Track(ctx context.Context, event Event) error {
	if event.Route == "" {
		return fmt.Errorf("event %s has no route", event.NavigationID)
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	n, err := c.hits.Incr(ctx, hitPrefix+event.Route)
	if err != nil {
		return fmt.Errorf("failed to count route %s: %w", event.Route, err)
	}
	if err := c.recent.Push(ctx, event); err != nil {
		return fmt.Errorf("failed to record navigation %s: %w", event.NavigationID, err)
	}

	c.logger.Debug("navigation tracked",
		logging.String("route", event.Route),
		logging.Any("hits", n))
	return nil
}

// Stats returns the hit counts and the recent events.
func (c *Counter) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.hits.Keys(ctx, hitPrefix)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list routes: %w", err)
	}

	stats := Stats{Hits: make(map[string]int64, len(keys))}
	for _, key := range keys {
		v, ok := c.hits.Get(ctx, key)
		if !ok {
			continue
		}
		stats.Hits[strings.TrimPrefix(key, hitPrefix)] = toInt64(v)
	}

	stats.Recent, err = c.recent.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// MemoryRecent is a RecentStore keeping events in memory.
type MemoryRecent struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewMemoryRecent creates a store holding at most limit events.
func NewMemoryRecent(limit int) *MemoryRecent {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &MemoryRecent{limit: limit}
}

func (m *MemoryRecent) Push(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append([]Event{event}, m.events...)
	if len(m.events) > m.limit {
		m.events = m.events[:m.limit]
	}
	return nil
}

func (m *MemoryRecent) List(_ context.Context) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out, nil
}

// RedisRecent is a RecentStore keeping events in a capped Redis list. Every
// pushed event is also published on the list's key as channel.
type RedisRecent struct {
	client *redis.Client
	key    string
	limit  int
}

// NewRedisRecent creates a store on the list at key.
func NewRedisRecent(client *redis.Client, key string, limit int) *RedisRecent {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &RedisRecent{client: client, key: key, limit: limit}
}

// Channel is the pub/sub channel events are published on.
func (r *RedisRecent) Channel() string {
	return r.key
}

func (r *RedisRecent) Push(ctx context.Context, event Event) error {
	if err := r.client.PushCapped(ctx, r.key, event, int64(r.limit)); err != nil {
		return err
	}
	return r.client.Publish(ctx, r.key, event)
}

func (r *RedisRecent) List(ctx context.Context) ([]Event, error) {
	values, err := r.client.Range(ctx, r.key, int64(r.limit))
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(values))
	for _, v := range values {
		var e Event
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}
