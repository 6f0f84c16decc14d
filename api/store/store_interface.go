/* store_interface.go
 * Contains the Settings interface used by the runner and the live view scheduler, allowing the persistence backend to
 * be swapped and mocked in tests
 */

package store

import (
	"context"
	"errors"
)

// ErrUnknownKey is returned for keys that are not part of the schema
var ErrUnknownKey = errors.New("unknown settings key")

// ErrWrongType is returned when a key is read or written with a type other than its schema type
var ErrWrongType = errors.New("settings key has a different type")

// Settings is the typed key/value preference store.
// Implementations must be safe for concurrent use
type Settings interface {
	GetBoolean(ctx context.Context, key string) (bool, error)
	GetInt(ctx context.Context, key string) (int, error)
	GetStrv(ctx context.Context, key string) ([]string, error)
	SetBoolean(ctx context.Context, key string, value bool) error
	SetInt(ctx context.Context, key string, value int) error
	SetStrv(ctx context.Context, key string, value []string) error
}

// Ensure the backends implement Settings
var (
	_ Settings = (*MemoryStore)(nil)
	_ Settings = (*FileStore)(nil)
	_ Settings = (*MongoStore)(nil)
)
