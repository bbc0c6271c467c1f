package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory backend. Apply is atomic.
type Memory struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Read returns a copy of the stored document.
func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[key]
	if !ok {
		return nil, ErrNotExist
	}
	return slices.Clone(data), nil
}

// Write stores a copy of data.
func (m *Memory) Write(_ context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[key] = slices.Clone(data)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, key)
	return nil
}

// ListKeys returns the sorted keys under prefix.
func (m *Memory) ListKeys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Apply validates every op, then applies them under one lock.
func (m *Memory) Apply(_ context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case OpWrite:
			m.docs[op.Key] = slices.Clone(op.Data)
		case OpDelete:
			delete(m.docs, op.Key)
		}
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
