package keymap

import (
	"fmt"
	"sync"
)

// Registry holds the loaded keymaps and tracks the current one. Keymap
// switches may arrive from outside the tick loop (configurator traffic), so
// the registry is the one keymap structure with a lock.
type Registry struct {
	mu      sync.RWMutex
	keymaps map[string]*Keymap
	current *Keymap
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{keymaps: make(map[string]*Keymap)}
}

// Add registers a keymap, replacing any keymap with the same id. The first
// keymap added becomes current.
func (r *Registry) Add(k *Keymap) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keymaps[k.ID] = k
	if r.current == nil {
		r.current = k
	}
}

// Get returns a keymap by id, or nil.
func (r *Registry) Get(id string) *Keymap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keymaps[id]
}

// Current returns the current keymap, or nil if the registry is empty.
func (r *Registry) Current() *Keymap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Switch makes the keymap with the given id current.
func (r *Registry) Switch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keymaps[id]
	if !ok {
		return fmt.Errorf("unknown keymap: %s", id)
	}
	r.current = k
	return nil
}

// IDs returns the registered keymap ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.keymaps))
	for id := range r.keymaps {
		ids = append(ids, id)
	}
	return ids
}
