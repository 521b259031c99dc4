// Package redis implements domain.StateStore on a Redis string key.
package redis

import (
	"context"
	"errors"

	"github.com/couchcryptid/climacare-alerts/internal/domain"
	goredis "github.com/go-redis/redis/v8"
)

// Store keeps each document as a plain Redis string without expiry.
type Store struct {
	client goredis.UniversalClient
}

// NewClient creates a Redis client for a single node.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewStore wraps an existing client.
func NewStore(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.client.Close()
}
