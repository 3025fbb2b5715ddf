// Package kv provides a small key-value store interface with ordered
// prefix listing. It backs the blob-oriented storage backend; keys are
// forward-slash separated paths.
//
// The package includes a BadgerDB-backed implementation for on-disk use
// and an in-memory implementation for testing.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key does not exist.
var ErrNotFound = errors.New("kv: not found")

// Store is a flat key-value store with lexicographically ordered keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Has reports whether a key exists.
	Has(ctx context.Context, key string) (bool, error)

	// List returns all keys with the given prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
