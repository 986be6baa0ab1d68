package service

import (
	"testing"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/events"
	"concerthub-api/internal/kvstore"
	"concerthub-api/internal/storage"
)

// newTestStore opens a private in-memory sqlite store.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	b, err := kvstore.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return storage.New(b)
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	items, err := catalog.DefaultItems()
	if err != nil {
		t.Fatalf("DefaultItems: %v", err)
	}
	return catalog.New(items)
}

// newTestState builds a loaded State over store with a fresh catalog.
func newTestState(t *testing.T, store *storage.Store) *State {
	t.Helper()
	s := NewState(newTestCatalog(t), store, events.Discard{}, Options{})
	if err := s.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}
