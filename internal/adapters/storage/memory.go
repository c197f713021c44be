package storage

import (
	"context"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// MemoryStore keeps values in a map for the lifetime of the process.
// It backs the session scope and the "memory" driver.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, domain.NewNotFoundError("key", key)
	}

	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)

	return nil
}

func (m *MemoryStore) Name() string { return "storage:memory" }

func (m *MemoryStore) Check(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
