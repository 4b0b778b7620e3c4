// Package history keeps the stack of settled route tokens the router
// navigates back and forward through.
package history

import (
	"context"
	"sync"

	"view-router/internal/common/cache"
	"view-router/internal/common/logging"
)

// DefaultLimit bounds the number of entries kept.
const DefaultLimit = 100

// Memory is an in-memory history stack with a cursor.
type Memory struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	limit   int
}

// NewMemory creates a history. initial, when not empty, becomes the current
// entry.
func NewMemory(initial string, limit int) *Memory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m := &Memory{cursor: -1, limit: limit}
	if initial != "" {
		m.entries = []string{initial}
		m.cursor = 0
	}
	return m
}

// CurrentToken returns the token under the cursor, or "" when empty.
func (m *Memory) CurrentToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor < 0 {
		return ""
	}
	return m.entries[m.cursor]
}

// Push records token as the new current entry and drops the forward
// entries. Pushing the current token again is a no-op.
func (m *Memory) Push(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= 0 && m.entries[m.cursor] == token {
		return
	}
	m.entries = append(m.entries[:m.cursor+1], token)
	if len(m.entries) > m.limit {
		m.entries = m.entries[len(m.entries)-m.limit:]
	}
	m.cursor = len(m.entries) - 1
}

// Back moves the cursor one entry back and returns the token there.
func (m *Memory) Back() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor <= 0 {
		return "", false
	}
	m.cursor--
	return m.entries[m.cursor], true
}

// Forward moves the cursor one entry forward and returns the token there.
func (m *Memory) Forward() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor >= len(m.entries)-1 {
		return "", false
	}
	m.cursor++
	return m.entries[m.cursor], true
}

// Entries returns a copy of the stack, oldest first.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.entries...)
}

const currentKey = "history:current"

// Persistent is a Memory whose current entry survives restarts in a
// cache.Cache, local or Redis.
type Persistent struct {
	*Memory
	store  cache.Cache
	logger logging.Logger
}

// NewPersistent restores the last current token from store.
func NewPersistent(ctx context.Context, store cache.Cache, limit int, logger logging.Logger) *Persistent {
	if logger == nil {
		logger = logging.NewNop()
	}
	initial := ""
	if v, ok := store.Get(ctx, currentKey); ok {
		if s, ok := v.(string); ok {
			initial = s
		}
	}
	return &Persistent{
		Memory: NewMemory(initial, limit),
		store:  store,
		logger: logger.WithFields(logging.String("component", "history")),
	}
}

// Push records token and stores it as the current entry.
func (p *Persistent) Push(token string) {
	p.Memory.Push(token)
	p.save()
}

func (p *Persistent) Back() (string, bool) {
	token, ok := p.Memory.Back()
	if ok {
		p.save()
	}
	return token, ok
}

func (p *Persistent) Forward() (string, bool) {
	token, ok := p.Memory.Forward()
	if ok {
		p.save()
	}
	return token, ok
}

func (p *Persistent) save() {
	token := p.CurrentToken()
	if err := p.store.Set(context.Background(), currentKey, token, cache.NoExpiration); err != nil {
		p.logger.Warn("failed to persist history", logging.String("token", token), logging.Err(err))
	}
}
