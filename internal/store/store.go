// Package store provides the key-value persistence used for session history.
//
// A Store maps string keys to opaque byte values. The file backend keeps every
// key in one JSON document, the SQLite backend keeps a single kv table, and the
// memory backend is used by tests and ephemeral play.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key is absent
	ErrNotFound = errors.New("key not found")

	// ErrUnknownDriver is returned by Open for an unsupported driver name
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store is a small key-value store. Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names accepted by Open
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Drivers lists the supported driver names
var Drivers = []string{DriverFile, DriverSQLite, DriverMemory}

// Open creates a store for driver at path. The memory driver ignores path.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverFile, "":
		return NewFileStore(path)
	case DriverSQLite:
		return OpenSQLite(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	return nil
}
