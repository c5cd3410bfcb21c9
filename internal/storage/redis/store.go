// Package redis provides a Redis-backed Store.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gracechapel/scripture-assistant/internal/storage"
)

// Store wraps the Redis client behind the storage.Store contract.
type Store struct {
	rdb *redis.Client
}

// New creates a new Redis store from a URI.
func New(uri string) (*Store, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{rdb: rdb}, nil
}

// Load retrieves a value by key.
func (s *Store) Load(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Save stores a value without expiry; slots live as long as the user keeps them.
func (s *Store) Save(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

// Remove deletes a key.
func (s *Store) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}
