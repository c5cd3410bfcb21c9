// Package storage defines the durable key/value slots the session manager
// persists conversation and favorite collections into.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// Store is a named-slot string store. Values are opaque serialized blobs;
// Remove on an absent key is not an error.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
