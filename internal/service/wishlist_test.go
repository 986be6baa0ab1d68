package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"concerthub-api/internal/model"
	"concerthub-api/internal/storage"
)

func TestWishlistAddRemoveScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t, newTestStore(t))

	added, err := s.Wishlist.Add(ctx, 1)
	if err != nil || !added {
		t.Fatalf("Add: added=%v err=%v", added, err)
	}

	list := s.Wishlist.List()
	if len(list) != 1 || list[0].ID != 1 || list[0].Price.String() != "Rp 500.000" {
		t.Fatalf("unexpected wishlist %+v", list)
	}
	notes := s.Notifications.List()
	if len(notes) != 1 || notes[0].Type != model.NotificationWishlistAdd {
		t.Fatalf("unexpected notifications %+v", notes)
	}
	if notes[0].Message != "Concert added to wishlist" || notes[0].RelatedTitle != "Java Jazz Festival" {
		t.Errorf("unexpected notification %+v", notes[0])
	}
	if b := s.Notifications.Badge(); b.Count != 1 {
		t.Errorf("expected badge 1, got %+v", b)
	}

	removed, err := s.Wishlist.Remove(ctx, 1)
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}
	if n := s.Wishlist.Count(); n != 0 {
		t.Errorf("expected empty wishlist, got %d", n)
	}
	if notes := s.Notifications.List(); notes[0].Type != model.NotificationWishlistRemove {
		t.Errorf("expected wishlist_remove at head, got %+v", notes[0])
	}
	if b := s.Notifications.Badge(); b.Count != 2 {
		t.Errorf("expected badge 2, got %+v", b)
	}
	if it, _ := s.Catalog.FindByID(1); it.Wishlist {
		t.Error("expected catalog flag cleared")
	}
	if err := s.Wishlist.Consistent(); err != nil {
		t.Error(err)
	}
}

func TestWishlistAddRemoveAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t, newTestStore(t))

	s.Wishlist.Add(ctx, 2)
	added, err := s.Wishlist.Add(ctx, 2)
	if err != nil || added {
		t.Errorf("second Add: added=%v err=%v", added, err)
	}
	if s.Wishlist.Count() != 1 || s.Notifications.Len() != 1 {
		t.Errorf("second Add had side effects: wishlist=%d notifications=%d",
			s.Wishlist.Count(), s.Notifications.Len())
	}

	removed, err := s.Wishlist.Remove(ctx, 3)
	if err != nil || removed {
		t.Errorf("Remove absent: removed=%v err=%v", removed, err)
	}
	if s.Notifications.Len() != 1 {
		t.Error("Remove absent emitted a notification")
	}
}

func TestWishlistToggle(t *testing.T) {
	ctx := context.Background()
	s := newTestState(t, newTestStore(t))

	for i, want := range []bool{true, false, true} {
		on, err := s.Wishlist.Toggle(ctx, 4)
		if err != nil {
			t.Fatalf("Toggle %d: %v", i, err)
		}
		if on != want {
			t.Errorf("Toggle %d: expected %v, got %v", i, want, on)
		}
		if it, _ := s.Catalog.FindByID(4); it.Wishlist != want {
			t.Errorf("Toggle %d: catalog flag %v", i, it.Wishlist)
		}
		if err := s.Wishlist.Consistent(); err != nil {
			t.Errorf("Toggle %d: %v", i, err)
		}
	}

	if _, err := s.Wishlist.Toggle(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWishlistReloadMerge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	s := newTestState(t, store)
	s.Wishlist.Add(ctx, 1)
	s.Wishlist.Add(ctx, 5)
	before := s.Wishlist.List()

	reloaded := newTestState(t, store)
	if after := reloaded.Wishlist.List(); !reflect.DeepEqual(before, after) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", before, after)
	}
	for _, id := range []int{1, 5} {
		if it, _ := reloaded.Catalog.FindByID(id); !it.Wishlist {
			t.Errorf("concert %d: flag not restored", id)
		}
	}
	if err := reloaded.Wishlist.Consistent(); err != nil {
		t.Error(err)
	}
}

func TestWishlistLoadDropsDuplicatesKeepsOrphans(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entries := []model.WishlistEntry{
		{Item: model.Item{ID: 2, Title: "first"}},
		{Item: model.Item{ID: 2, Title: "second"}},
		{Item: model.Item{ID: 77, Title: "gone"}},
	}
	if err := store.Save(ctx, storage.KeyWishlist, entries); err != nil {
		t.Fatal(err)
	}

	s := newTestState(t, store)
	list := s.Wishlist.List()
	if len(list) != 2 || list[0].Title != "first" || list[1].ID != 77 {
		t.Fatalf("unexpected wishlist %+v", list)
	}
	if err := s.Wishlist.Consistent(); err != nil {
		t.Error(err)
	}

	// The orphan can still be removed.
	removed, err := s.Wishlist.Remove(ctx, 77)
	if err != nil || !removed {
		t.Errorf("Remove orphan: removed=%v err=%v", removed, err)
	}
}
