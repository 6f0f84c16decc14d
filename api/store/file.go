/* file.go
 * Contains the YAML file settings backend built on viper. Every write is persisted immediately
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spf13/viper"
)

type FileStore struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper
}

// NewFileStore opens the settings file at path.
// Preconditions: Receives the path of a YAML file. The file does not need to exist
// Postconditions: Returns the store, or an error if an existing file cannot be parsed
func NewFileStore(path string) (*FileStore, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	for key, entry := range Schema {
		v.SetDefault(key, entry.Default)
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error checking settings file %s: %w", path, err)
	}

	return &FileStore{path: path, v: v}, nil
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) GetBoolean(_ context.Context, key string) (bool, error) {
	if _, err := lookup(key, KindBool); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v.GetBool(key), nil
}

func (f *FileStore) GetInt(_ context.Context, key string) (int, error) {
	if _, err := lookup(key, KindInt); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v.GetInt(key), nil
}

func (f *FileStore) GetStrv(_ context.Context, key string) ([]string, error) {
	if _, err := lookup(key, KindStrv); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	values := f.v.GetStringSlice(key)
	if values == nil {
		return []string{}, nil
	}
	return slices.Clone(values), nil
}

func (f *FileStore) SetBoolean(_ context.Context, key string, value bool) error {
	return f.set(key, KindBool, value)
}

func (f *FileStore) SetInt(_ context.Context, key string, value int) error {
	return f.set(key, KindInt, value)
}

func (f *FileStore) SetStrv(_ context.Context, key string, value []string) error {
	if value == nil {
		value = []string{}
	}
	return f.set(key, KindStrv, slices.Clone(value))
}

func (f *FileStore) set(key string, kind Kind, value any) error {
	if _, err := lookup(key, kind); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v.Set(key, value)
	if err := f.v.WriteConfigAs(f.path); err != nil {
		return fmt.Errorf("error writing settings file %s: %w", f.path, err)
	}
	return nil
}
