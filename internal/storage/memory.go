package storage

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Gateway. Data is lost when the process exits.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// SaveErr, when non-nil, is returned by every Save and Remove. Tests use it
	// to simulate a full or unavailable store.
	SaveErr error
}

// NewMemory returns an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns a copy of the document under key.
func (m *Memory) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of value under key.
func (m *Memory) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	delete(m.data, key)
	return nil
}

// FailWrites sets or clears the injected write error.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.SaveErr = err
	m.mu.Unlock()
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
