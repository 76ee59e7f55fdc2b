package keyvalue

import (
	"context"
	"sync"
)

// Memory is an in-memory Store used by tests and single-node deployments.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

// Get retrieves the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key, overwriting any previous value.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Apply commits all staged writes under a single lock acquisition.
func (m *Memory) Apply(ctx context.Context, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range batch.Ops() {
		stored := make([]byte, len(op.Value))
		copy(stored, op.Value)
		m.data[op.Key] = stored
	}
	return nil
}
