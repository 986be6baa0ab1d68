// Package catalog holds the concert catalog loaded from the seed feed and
// is the single writer of each item's wishlist flag.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"concerthub-api/internal/model"
)

// ErrNotFound is returned for ids that are not in the catalog.
var ErrNotFound = errors.New("concert not found")

// Catalog is the in-memory item collection. Item attributes are fixed
// after construction; only the wishlist flag changes.
type Catalog struct {
	mu    sync.RWMutex
	items []model.Item
	index map[int]int
}

// New builds a catalog from seed items, preserving their order. Flags in
// the seed are ignored; they are derived from the wishlist on load.
func New(items []model.Item) *Catalog {
	c := &Catalog{
		items: make([]model.Item, len(items)),
		index: make(map[int]int, len(items)),
	}
	for i, it := range items {
		it = it.Clone()
		it.Wishlist = false
		c.items[i] = it
		c.index[it.ID] = i
	}
	return c
}

// All returns copies of every item in catalog order.
func (c *Catalog) All() []model.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// FindByID returns a copy of the item with the given id.
func (c *Catalog) FindByID(id int) (model.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return model.Item{}, false
	}
	return c.items[i].Clone(), true
}

// ToggleWishlist flips the flag and returns the resulting state. Callers
// that also maintain the wishlist collection go through the wishlist
// service instead.
func (c *Catalog) ToggleWishlist(id int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return false, fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	c.items[i].Wishlist = !c.items[i].Wishlist
	return c.items[i].Wishlist, nil
}

// SetWishlist sets the flag to on.
func (c *Catalog) SetWishlist(id int, on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("set wishlist %d: %w", id, ErrNotFound)
	}
	c.items[i].Wishlist = on
	return nil
}

// WishlistedIDs returns the ids whose flag is set, in catalog order.
func (c *Catalog) WishlistedIDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []int
	for _, it := range c.items {
		if it.Wishlist {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
