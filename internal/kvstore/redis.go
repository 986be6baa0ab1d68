package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds configuration for the Redis backend.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisBackend stores values as plain Redis strings under a key prefix.
// Expiry is handled natively by Redis TTLs.
type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBackend connects to Redis and verifies the connection.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	b := NewRedisBackendWithClient(client, cfg.KeyPrefix)
	log.Printf("[RedisBackend] Started - DB:%d, prefix:%s", cfg.DB, b.keyPrefix)
	return b, nil
}

// NewRedisBackendWithClient wraps an existing client.
func NewRedisBackendWithClient(client *redis.Client, keyPrefix string) *RedisBackend {
	if keyPrefix == "" {
		keyPrefix = "concerthub"
	}
	return &RedisBackend{client: client, keyPrefix: keyPrefix}
}

func (b *RedisBackend) key(k string) string {
	return b.keyPrefix + ":" + k
}

// Get retrieves a value by key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set stores a value; ttl zero keeps it without expiry.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := b.client.Set(ctx, b.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value by key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.key(key)).Err()
}

// Exists checks if a key exists.
func (b *RedisBackend) Exists(ctx context.Context, key string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetOrSet retrieves a value or computes and stores it if missing.
func (b *RedisBackend) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	return getOrSet(ctx, b, key, ttl, fn)
}

// Clear removes every key under this backend's prefix.
func (b *RedisBackend) Clear(ctx context.Context) error {
	iter := b.client.Scan(ctx, 0, b.keyPrefix+":*", 100).Iterator()

	pipe := b.client.Pipeline()
	queued := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		queued++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}

	if queued == 0 {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear keys: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

var _ Backend = (*RedisBackend)(nil)
