package kvstore

import (
	"context"
	"sync"
	"time"
)

// memoryEntry represents a stored value with optional expiration.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// isExpired checks if the entry has expired. Zero expiresAt never expires.
func (e *memoryEntry) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryBackend is an in-memory implementation of Backend.
// Use this for development/testing; contents do not survive a restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewMemoryBackend creates a new in-memory backend with automatic cleanup
// of expired entries.
func NewMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{
		entries:         make(map[string]*memoryEntry),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go b.cleanup()

	return b
}

// Get retrieves a value by key.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, exists := b.entries[key]
	if !exists || entry.isExpired(time.Now()) {
		return nil, ErrNotFound
	}

	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value with the given TTL.
func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	b.entries[key] = &memoryEntry{
		value:     valueCopy,
		expiresAt: expiry(time.Now(), ttl),
	}

	return nil
}

// Delete removes a value by key.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, key)
	return nil
}

// Exists checks if a key exists and is not expired.
func (b *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, exists := b.entries[key]
	if !exists || entry.isExpired(time.Now()) {
		return false, nil
	}

	return true, nil
}

// GetOrSet retrieves a value or computes and stores it if missing.
func (b *MemoryBackend) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	return getOrSet(ctx, b, key, ttl, fn)
}

// Clear removes all entries.
func (b *MemoryBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make(map[string]*memoryEntry)
	return nil
}

// Len returns the number of live entries.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, e := range b.entries {
		if !e.isExpired(now) {
			n++
		}
	}
	return n
}

// Close stops the background cleanup goroutine.
func (b *MemoryBackend) Close() error {
	b.stopOnce.Do(func() { close(b.stopCleanup) })
	return nil
}

// cleanup periodically removes expired entries.
func (b *MemoryBackend) cleanup() {
	ticker := time.NewTicker(b.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.removeExpired()
		case <-b.stopCleanup:
			return
		}
	}
}

// removeExpired removes all expired entries.
func (b *MemoryBackend) removeExpired() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for key, entry := range b.entries {
		if entry.isExpired(now) {
			delete(b.entries, key)
		}
	}
}

var _ Backend = (*MemoryBackend)(nil)
