package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBackends(t *testing.T) map[string]Backend {
	t.Helper()

	mem := NewMemoryBackend()
	t.Cleanup(func() { mem.Close() })

	lite, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { lite.Close() })

	return map[string]Backend{"memory": mem, "sqlite": lite}
}

func TestBackendGetSetDelete(t *testing.T) {
	ctx := context.Background()

	for name, b := range newTestBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := b.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := b.Set(ctx, "k", []byte(`{"a":1}`), 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := b.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"a":1}` {
				t.Errorf("expected stored value, got %q", got)
			}

			// Overwrite replaces the value.
			if err := b.Set(ctx, "k", []byte(`{"a":2}`), 0); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, _ = b.Get(ctx, "k")
			if string(got) != `{"a":2}` {
				t.Errorf("expected overwritten value, got %q", got)
			}

			ok, err := b.Exists(ctx, "k")
			if err != nil || !ok {
				t.Errorf("expected key to exist, got %v %v", ok, err)
			}

			if err := b.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := b.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete missing: %v", err)
			}
			if ok, _ := b.Exists(ctx, "k"); ok {
				t.Error("expected key to be gone")
			}
		})
	}
}

func TestBackendExpiry(t *testing.T) {
	ctx := context.Background()

	for name, b := range newTestBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := b.Set(ctx, "session", []byte("x"), time.Millisecond); err != nil {
				t.Fatalf("Set: %v", err)
			}
			time.Sleep(5 * time.Millisecond)

			if _, err := b.Get(ctx, "session"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected expired key to be missing, got %v", err)
			}
			if ok, _ := b.Exists(ctx, "session"); ok {
				t.Error("expected expired key to not exist")
			}
		})
	}
}

func TestBackendGetOrSetAndClear(t *testing.T) {
	ctx := context.Background()

	for name, b := range newTestBackends(t) {
		t.Run(name, func(t *testing.T) {
			calls := 0
			fn := func() ([]byte, error) {
				calls++
				return []byte("computed"), nil
			}

			for i := 0; i < 2; i++ {
				v, err := b.GetOrSet(ctx, "lazy", 0, fn)
				if err != nil {
					t.Fatalf("GetOrSet: %v", err)
				}
				if string(v) != "computed" {
					t.Errorf("unexpected value %q", v)
				}
			}
			if calls != 1 {
				t.Errorf("expected fn to run once, ran %d times", calls)
			}

			if err := b.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, err := b.Get(ctx, "lazy"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected cleared key to be missing, got %v", err)
			}
		})
	}
}

func TestSQLBackendDeleteExpired(t *testing.T) {
	ctx := context.Background()
	b, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	b.Set(ctx, "keep", []byte("1"), 0)
	b.Set(ctx, "drop", []byte("2"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	deleted, err := b.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	stats, err := b.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["total_keys"].(int64) != 1 {
		t.Errorf("expected 1 key left, got %v", stats["total_keys"])
	}
}

func TestRebindPostgres(t *testing.T) {
	b := &SQLBackend{dialect: DialectPostgres}
	got := b.rebind("SELECT * FROM kv_store WHERE store_key = ? AND expires_at < ?")
	want := "SELECT * FROM kv_store WHERE store_key = $1 AND expires_at < $2"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
}
