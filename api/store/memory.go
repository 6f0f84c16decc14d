/* memory.go
 * Contains the in-memory settings backend. Used for ephemeral runs and as the default store in tests
 */

package store

import (
	"context"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore returns a store holding the schema defaults
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: Defaults()}
}

func (m *MemoryStore) GetBoolean(_ context.Context, key string) (bool, error) {
	if _, err := lookup(key, KindBool); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key].(bool), nil
}

func (m *MemoryStore) GetInt(_ context.Context, key string) (int, error) {
	if _, err := lookup(key, KindInt); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key].(int), nil
}

func (m *MemoryStore) GetStrv(_ context.Context, key string) ([]string, error) {
	if _, err := lookup(key, KindStrv); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.values[key].([]string)), nil
}

func (m *MemoryStore) SetBoolean(_ context.Context, key string, value bool) error {
	return m.set(key, KindBool, value)
}

func (m *MemoryStore) SetInt(_ context.Context, key string, value int) error {
	return m.set(key, KindInt, value)
}

func (m *MemoryStore) SetStrv(_ context.Context, key string, value []string) error {
	if value == nil {
		value = []string{}
	}
	return m.set(key, KindStrv, slices.Clone(value))
}

func (m *MemoryStore) set(key string, kind Kind, value any) error {
	if _, err := lookup(key, kind); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
