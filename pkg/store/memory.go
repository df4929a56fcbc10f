package store

import (
	"context"
	"sync"

	"tableflip.dev/fridge/pkg/note"
)

// Memory is an in-process Overlay, used by tests and when the disk store
// cannot be opened.
type Memory struct {
	mu     sync.RWMutex
	colors map[string]note.Color
	// Err, when set, is returned from Set and makes Get report absent.
	Err error
}

var _ Overlay = (*Memory)(nil)

// NewMemory returns an empty in-memory overlay.
func NewMemory() *Memory {
	return &Memory{colors: make(map[string]note.Color)}
}

func (m *Memory) Get(id string) (note.Color, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return "", false
	}
	c, ok := m.colors[id]
	return c, ok
}

func (m *Memory) Set(id string, c note.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.colors[id] = c
	return nil
}

func (m *Memory) All(_ context.Context) map[string]note.Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]note.Color, len(m.colors))
	for k, v := range m.colors {
		out[k] = v
	}
	return out
}
