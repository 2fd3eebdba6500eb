package assets

import (
	"sync"

	"github.com/spaghettifunk/assetforge/engine/core"
)

// slotFor returns the handle slot of name, creating it when missing.
// Callers hold the manager mutex.
func (m *AssetManager) slotFor(name string) int {
	if idx, ok := m.slotIndex[name]; ok {
		return idx
	}
	m.slots = append(m.slots, slot{name: name})
	idx := len(m.slots) - 1
	m.slotIndex[name] = idx
	return idx
}

// bump invalidates handles of name. Callers hold the manager mutex.
func (m *AssetManager) bump(name string) {
	if idx, ok := m.slotIndex[name]; ok {
		m.slots[idx].generation++
	}
}

func (m *AssetManager) generation(idx int) uint64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.slots[idx].generation
}

// Handle is a reference to a named asset that follows hot reloads. Every
// Get checks the slot generation and re-resolves the asset when it moved.
type Handle[T Asset] struct {
	manager *AssetManager
	index   int
	name    string

	mu     sync.Mutex
	seen   uint64
	value  T
	frozen bool
}

// GetHandle resolves name and returns a handle to it.
func GetHandle[T Asset](m *AssetManager, name string) (*Handle[T], error) {
	m.mutex.Lock()
	idx := m.slotFor(name)
	gen := m.slots[idx].generation
	m.mutex.Unlock()

	v, err := Get[T](m, name)
	if err != nil {
		return nil, err
	}
	return &Handle[T]{
		manager: m,
		index:   idx,
		name:    name,
		seen:    gen,
		value:   v,
		frozen:  !m.options.HotReload,
	}, nil
}

func (h *Handle[T]) Name() string {
	return h.name
}

// Get returns the current asset. When a reload fails the previous value is
// returned together with the error.
func (h *Handle[T]) Get() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.frozen {
		return h.value, nil
	}
	gen := h.manager.generation(h.index)
	if gen == h.seen {
		return h.value, nil
	}

	a, err := h.manager.GetUnresolved(h.name)
	if err != nil {
		return h.value, err
	}
	t, ok := a.(T)
	if !ok {
		core.LogWarn("Asset '%s' reloaded as %s; handle keeps its first value", h.name, a.Kind())
		h.frozen = true
		return h.value, nil
	}
	h.value = t
	h.seen = gen
	return h.value, nil
}

// MustGet is Get for callers that treat a failed reload as fatal.
func (h *Handle[T]) MustGet() T {
	v, err := h.Get()
	if err != nil {
		core.LogFatal("Asset '%s' failed to reload: %s", h.name, err)
	}
	return v
}
