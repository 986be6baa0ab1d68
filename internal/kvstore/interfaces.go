package kvstore

import (
	"context"
	"errors"
	"time"
)

// Backend is a textual key-value store. Durable state uses ttl 0 (never
// expires); ephemeral session state passes a positive ttl.
// Implementations: memory (development/testing), SQL (sqlite, postgres,
// mysql), Redis and MongoDB.
type Backend interface {
	// Get retrieves a value by key. Returns ErrNotFound if missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A ttl of zero keeps the value until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists and is not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// GetOrSet retrieves a value or computes and stores it if missing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Clear removes all entries owned by this backend.
	Clear(ctx context.Context) error

	// Close releases connections and background goroutines.
	Close() error
}

// Sweeper is implemented by backends that do not expire entries on their
// own and need a periodic purge.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Common store errors
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the key was not found or has expired.
	ErrNotFound StoreError = "key not found"
)

// expiry converts a ttl to an absolute deadline; zero means never.
func expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

// getOrSet is the shared GetOrSet implementation.
func getOrSet(ctx context.Context, b Backend, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	if value, err := b.Get(ctx, key); err == nil {
		return value, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	if err := b.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}

	return value, nil
}
