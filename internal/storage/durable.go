// Package storage is the durable store adapter: it serializes collections
// to JSON text and writes them under fixed keys of a kvstore.Backend.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"

	"concerthub-api/internal/kvstore"
)

// Persisted keys. Each is saved independently; there is no cross-key
// transaction.
const (
	KeyNotifications = "concertHubNotifications"
	KeyUserSettings  = "concertHubUserSettings"
	KeyWishlist      = "concertHubWishlist"
	KeyOrders        = "concertHubOrders"
)

// Store is the durable side-store shared by all state components.
type Store struct {
	backend kvstore.Backend
}

// New wraps a backend.
func New(backend kvstore.Backend) *Store {
	return &Store{backend: backend}
}

// Backend exposes the underlying backend for session storage and stats.
func (s *Store) Backend() kvstore.Backend {
	return s.backend
}

// Save serializes value and writes it under key.
func (s *Store) Save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}

	if err := s.backend.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Load reads key into dst. It reports false, with dst untouched, when the
// key is missing or its payload is corrupt; callers then keep defaults.
// Only backend failures are returned as errors.
func (s *Store) Load(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if !json.Valid(data) {
		log.Printf("[Storage] Corrupt payload under %s (%d bytes), using defaults", key, len(data))
		return false, nil
	}

	// Decode into a copy so a payload of the wrong shape cannot leave dst
	// half-written. Fields absent from the payload keep dst's values.
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, fmt.Errorf("load %s: destination must be a non-nil pointer", key)
	}
	tmp := reflect.New(target.Elem().Type())
	tmp.Elem().Set(target.Elem())

	if err := json.Unmarshal(data, tmp.Interface()); err != nil {
		log.Printf("[Storage] Cannot decode %s: %v, using defaults", key, err)
		return false, nil
	}
	target.Elem().Set(tmp.Elem())
	return true, nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}
