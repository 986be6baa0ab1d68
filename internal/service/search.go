package service

import (
	"strings"

	"concerthub-api/internal/model"
)

// SearchItems filters concerts by title, genre, description or location.
func SearchItems(items []model.Item, term string) []model.Item {
	return filter(items, term, func(it model.Item) []string {
		return []string{it.Title, it.Genre, it.Description, it.Location}
	})
}

// SearchWishlist filters wishlist entries on the same fields as concerts.
func SearchWishlist(entries []model.WishlistEntry, term string) []model.WishlistEntry {
	return filter(entries, term, func(e model.WishlistEntry) []string {
		return []string{e.Title, e.Genre, e.Description, e.Location}
	})
}

// SearchOrders filters orders by id, concert title, location or status.
func SearchOrders(orders []model.Order, term string) []model.Order {
	return filter(orders, term, func(o model.Order) []string {
		return []string{o.ID, o.ConcertTitle, o.ConcertLocation, o.Status}
	})
}

// filter keeps the elements where any field contains term, ignoring case.
// A blank term keeps everything. The input slice is never modified.
func filter[T any](in []T, term string, fields func(T) []string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if term == "" || matches(fields(v), term) {
			out = append(out, v)
		}
	}
	return out
}

func matches(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
