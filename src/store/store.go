// Package store provides the durable key-value store the agent persists dive
// documents to. Keys are deterministic paths derived from a
// processing-session id; writers are last-writer-wins per key.
package store

import (
	"context"
	"errors"
)

// ErrNotFound indicates no document exists at the requested key.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the narrow read/write contract the controller depends on.
type ObjectStore interface {
	// Put writes a document at key, replacing any previous version.
	Put(ctx context.Context, key string, body []byte) error

	// Get returns the document at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
