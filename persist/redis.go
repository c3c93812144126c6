package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage stores records as plain Redis strings without expiry.
type RedisStorage struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStorage returns a storage writing to client. prefix, when
// non-empty, namespaces every key as "{prefix}:{key}".
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	return &RedisStorage{redis: client, prefix: prefix}
}

func (s *RedisStorage) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Read returns nil, nil on redis.Nil.
func (s *RedisStorage) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Write sets the prefixed key without expiry.
func (s *RedisStorage) Write(ctx context.Context, key string, data []byte) error {
	if err := s.redis.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
