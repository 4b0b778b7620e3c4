package pipeline

import (
	"sort"
	"sync"

	"view-router/internal/factory"
)

// Slot identifies a selector within a shell.
type Slot struct {
	Shell    string `json:"shell"`
	Selector string `json:"selector"`
}

// Registry maps each occupied slot to the controller rendered there. Only
// the pipeline writes to it; readers get consistent snapshots.
type Registry struct {
	mu      sync.RWMutex
	entries map[Slot]*factory.ControllerInstance
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[Slot]*factory.ControllerInstance)}
}

// Get returns the controller occupying slot.
func (r *Registry) Get(slot Slot) (*factory.ControllerInstance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.entries[slot]
	return inst, ok
}

// Slots returns the occupied slots sorted by shell and selector.
func (r *Registry) Slots() []Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := make([]Slot, 0, len(r.entries))
	for s := range r.entries {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Shell != slots[j].Shell {
			return slots[i].Shell < slots[j].Shell
		}
		return slots[i].Selector < slots[j].Selector
	})
	return slots
}

// Len returns the number of occupied slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) set(slot Slot, inst *factory.ControllerInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[slot] = inst
}

func (r *Registry) remove(slot Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, slot)
}

func (r *Registry) inShell(shell string) []Slot {
	var out []Slot
	for _, s := range r.Slots() {
		if s.Shell == shell {
			out = append(out, s)
		}
	}
	return out
}
