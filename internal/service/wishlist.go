package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/events"
	"concerthub-api/internal/model"
	"concerthub-api/internal/storage"
)

// WishlistService keeps the wishlist collection and the catalog flags in
// step. It is the only caller of the catalog's flag setters.
type WishlistService struct {
	mu            sync.Mutex
	catalog       *catalog.Catalog
	store         *storage.Store
	notifications *NotificationLog
	events        events.Publisher
	entries       []model.WishlistEntry

	now func() time.Time
}

// NewWishlistService creates an empty wishlist bound to the catalog.
func NewWishlistService(cat *catalog.Catalog, store *storage.Store, notifications *NotificationLog, pub events.Publisher) *WishlistService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &WishlistService{
		catalog:       cat,
		store:         store,
		notifications: notifications,
		events:        pub,
		entries:       []model.WishlistEntry{},
		now:           now,
	}
}

// Load restores persisted entries and re-derives every catalog flag from
// them. Duplicate ids keep their first entry. Entries for concerts no
// longer in the catalog are kept without a flag.
func (s *WishlistService) Load(ctx context.Context) error {
	var loaded []model.WishlistEntry
	if _, err := s.store.Load(ctx, storage.KeyWishlist, &loaded); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]model.WishlistEntry, 0, len(loaded))
	seen := make(map[int]bool, len(loaded))
	for _, e := range loaded {
		if seen[e.ID] {
			log.Printf("[WishlistService] Dropping duplicate entry for concert %d", e.ID)
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	s.entries = entries

	for _, id := range s.catalog.WishlistedIDs() {
		if !seen[id] {
			s.catalog.SetWishlist(id, false)
		}
	}
	orphaned := 0
	for _, e := range entries {
		if err := s.catalog.SetWishlist(e.ID, true); err != nil {
			orphaned++
		}
	}

	log.Printf("[WishlistService] Loaded %d entries (%d not in catalog)", len(entries), orphaned)
	return nil
}

// Add snapshots the concert into the wishlist. It reports false without
// side effects when the concert is already present.
func (s *WishlistService) Add(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(ctx, id)
}

// Remove drops the concert from the wishlist. It reports false without
// side effects when the concert is absent.
func (s *WishlistService) Remove(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, id)
}

// Toggle flips membership and returns the new state.
func (s *WishlistService) Toggle(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) >= 0 {
		_, err := s.removeLocked(ctx, id)
		return false, err
	}
	return s.addLocked(ctx, id)
}

func (s *WishlistService) addLocked(ctx context.Context, id int) (bool, error) {
	if s.indexLocked(id) >= 0 {
		return false, nil
	}
	item, ok := s.catalog.FindByID(id)
	if !ok {
		return false, fmt.Errorf("concert %d: %w", id, ErrNotFound)
	}

	if err := s.catalog.SetWishlist(id, true); err != nil {
		return false, fmt.Errorf("concert %d: %w", id, ErrNotFound)
	}
	item.Wishlist = true
	s.entries = append(s.entries, model.WishlistEntry{Item: item, AddedAt: s.now()})

	s.notify(ctx, model.NotificationWishlistAdd, "Concert added to wishlist", item.Title)
	return true, s.commitLocked(ctx)
}

func (s *WishlistService) removeLocked(ctx context.Context, id int) (bool, error) {
	i := s.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	entry := s.entries[i]

	entries := make([]model.WishlistEntry, 0, len(s.entries)-1)
	entries = append(entries, s.entries[:i]...)
	entries = append(entries, s.entries[i+1:]...)
	s.entries = entries

	if err := s.catalog.SetWishlist(id, false); err != nil {
		log.Printf("[WishlistService] Removed concert %d which is no longer in the catalog", id)
	}

	s.notify(ctx, model.NotificationWishlistRemove, "Concert removed from wishlist", entry.Title)
	return true, s.commitLocked(ctx)
}

// notify appends to the notification log. A failed notification save
// does not undo the wishlist change.
func (s *WishlistService) notify(ctx context.Context, typ model.NotificationType, message, title string) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Append(ctx, typ, message, title); err != nil {
		log.Printf("[WishlistService] Notification not persisted: %v", err)
	}
}

func (s *WishlistService) commitLocked(ctx context.Context) error {
	err := s.store.Save(ctx, storage.KeyWishlist, s.entries)
	if err != nil {
		log.Printf("[WishlistService] Save failed: %v", err)
	}
	s.events.Publish(events.Event{Type: events.WishlistCountChanged, Payload: len(s.entries)})
	return err
}

func (s *WishlistService) indexLocked(id int) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// List returns the entries in insertion order.
func (s *WishlistService) List() []model.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.WishlistEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = model.WishlistEntry{Item: e.Item.Clone(), AddedAt: e.AddedAt}
	}
	return out
}

// Count returns the number of entries.
func (s *WishlistService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Contains reports whether the concert is wishlisted.
func (s *WishlistService) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Consistent checks that the catalog flags and the entries describe the
// same set of concerts. Entries whose concert left the catalog are
// ignored since they cannot carry a flag.
func (s *WishlistService) Consistent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var want []int
	for _, e := range s.entries {
		if _, ok := s.catalog.FindByID(e.ID); ok {
			want = append(want, e.ID)
		}
	}
	got := s.catalog.WishlistedIDs()
	sort.Ints(want)
	sort.Ints(got)

	if len(want) != len(got) {
		return fmt.Errorf("wishlist has %v but catalog flags %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("wishlist has %v but catalog flags %v", want, got)
		}
	}
	return nil
}
