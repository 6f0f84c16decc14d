/* test_helpers.go
 * Contains test helpers for the store package and mock settings used by the packages that depend on it
 */

package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
)

// MockSettings wraps a MemoryStore and allows tests to inject errors per key
type MockSettings struct {
	*MemoryStore

	mu sync.Mutex
	// Error injection for testing error paths. A key mapped to an error fails every read of that key
	GetErrors map[string]error
	// SetError fails every write
	SetError error
	// Writes counts successful writes per key
	Writes map[string]int
}

// NewMockSettings creates a MockSettings holding the schema defaults
func NewMockSettings() *MockSettings {
	return &MockSettings{
		MemoryStore: NewMemoryStore(),
		GetErrors:   make(map[string]error),
		Writes:      make(map[string]int),
	}
}

// FailGet makes every read of key fail
func (m *MockSettings) FailGet(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErrors[key] = fmt.Errorf("mock read failure for %s", key)
}

func (m *MockSettings) getErr(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GetErrors[key]
}

func (m *MockSettings) wrote(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetError != nil {
		return m.SetError
	}
	m.Writes[key]++
	return nil
}

// WriteCount returns the number of successful writes of key
func (m *MockSettings) WriteCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Writes[key]
}

func (m *MockSettings) GetBoolean(ctx context.Context, key string) (bool, error) {
	if err := m.getErr(key); err != nil {
		return false, err
	}
	return m.MemoryStore.GetBoolean(ctx, key)
}

func (m *MockSettings) GetInt(ctx context.Context, key string) (int, error) {
	if err := m.getErr(key); err != nil {
		return 0, err
	}
	return m.MemoryStore.GetInt(ctx, key)
}

func (m *MockSettings) GetStrv(ctx context.Context, key string) ([]string, error) {
	if err := m.getErr(key); err != nil {
		return nil, err
	}
	return m.MemoryStore.GetStrv(ctx, key)
}

func (m *MockSettings) SetBoolean(ctx context.Context, key string, value bool) error {
	if err := m.wrote(key); err != nil {
		return err
	}
	return m.MemoryStore.SetBoolean(ctx, key, value)
}

func (m *MockSettings) SetInt(ctx context.Context, key string, value int) error {
	if err := m.wrote(key); err != nil {
		return err
	}
	return m.MemoryStore.SetInt(ctx, key, value)
}

func (m *MockSettings) SetStrv(ctx context.Context, key string, value []string) error {
	if err := m.wrote(key); err != nil {
		return err
	}
	return m.MemoryStore.SetStrv(ctx, key, value)
}

var _ Settings = (*MockSettings)(nil)

// CreateTestMongoStore connects to the database named by MONGO_TEST_URI and returns the store with a cleanup function
// that drops the test database. The test is skipped when MONGO_TEST_URI is not set
func CreateTestMongoStore(t *testing.T) (*MongoStore, func()) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping MongoDB tests")
	}
	s, err := NewMongoStore(context.Background(), uri, "test_live_tennis", "test")
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	cleanup := func() {
		_ = s.Database.Drop(context.Background())
		_ = s.Close(context.Background())
	}
	return s, cleanup
}
