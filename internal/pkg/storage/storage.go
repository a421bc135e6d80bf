package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KeyValueStorage is the durable client storage the session is persisted to.
// Values are opaque strings; callers serialize structured values as JSON.
type KeyValueStorage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying connection or file handle.
	Close() error
}

const (
	TypeFile     = "file"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeRedis    = "redis"
	TypeMemory   = "memory"
)
