package locals

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory Store. It uses sync.Map because values are written
// rarely and read from many goroutines once the container runs.
type Memory struct {
	values sync.Map
}

// NewMemory creates an empty in-memory store, optionally seeded with values.
func NewMemory(seed map[string]any) *Memory {
	m := &Memory{}
	for k, v := range seed {
		m.values.Store(k, v)
	}
	return m
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (any, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key string, value any) error {
	m.values.Store(key, value)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.values.Delete(key)
	return nil
}

// Keys returns the stored keys, sorted.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	var keys []string
	m.values.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

var _ Store = (*Memory)(nil)
