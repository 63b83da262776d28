package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Gateway
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	sets   int
	getErr error
	setErr error
}

// NewMemoryStore creates an empty in-memory gateway
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value under key, or nil when absent
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value under key
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	return m.SetMany(ctx, map[string][]byte{key: value})
}

// SetMany stores all values atomically
func (m *MemoryStore) SetMany(ctx context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setErr != nil {
		return m.setErr
	}
	for k, v := range values {
		cp := make([]byte, len(v))
		copy(cp, v)
		m.data[k] = cp
	}
	m.sets++
	return nil
}

// Fail makes subsequent Get and Set calls return the given errors. Nil
// errors restore normal operation.
func (m *MemoryStore) Fail(getErr, setErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = getErr
	m.setErr = setErr
}

// Writes returns how many successful write calls were made
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sets
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
