package model

import (
	"time"

	"concerthub-api/pkg/money"
)

// Item is a catalog concert. Wishlist is the only mutable field and is
// owned by the catalog.
type Item struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Location    string      `json:"location"`
	Price       money.Price `json:"price"`
	Genre       string      `json:"genre"`
	Badge       string      `json:"badge"`
	Images      []string    `json:"images"`
	Wishlist    bool        `json:"wishlist"`
}

// Clone returns a deep copy so callers cannot alias the image slice.
func (i Item) Clone() Item {
	c := i
	if i.Images != nil {
		c.Images = append([]string(nil), i.Images...)
	}
	return c
}

// WishlistEntry is a snapshot of an Item taken when it was added.
type WishlistEntry struct {
	Item
	AddedAt time.Time `json:"added_at"`
}
