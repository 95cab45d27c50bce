package storage

import (
	"context"
	"sync"

	myErr "storefront/internal/types/errors"
)

// MemorySlot хранит слоты в памяти процесса
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{
		values: make(map[string]string),
	}
}

func (m *MemorySlot) Get(_ context.Context, scope, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[slotKey(scope, key)]
	if !ok {
		return "", myErr.ErrNotFound
	}

	return v, nil
}

func (m *MemorySlot) Set(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[slotKey(scope, key)] = value

	return nil
}

func slotKey(scope, key string) string {
	return "storefront:" + scope + ":" + key
}
