// Package memory provides an in-memory Store for tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/gracechapel/scripture-assistant/internal/storage"
)

// Store keeps values in a map guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Load retrieves a value by key.
func (s *Store) Load(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

// Save stores a value under key.
func (s *Store) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Remove deletes a key. Removing an absent key is a no-op.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
