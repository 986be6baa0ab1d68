package service

import (
	"reflect"
	"testing"

	"concerthub-api/internal/model"
)

func TestSearchItems(t *testing.T) {
	items := []model.Item{
		{ID: 1, Title: "Java Jazz Festival", Genre: "Jazz", Location: "Jakarta"},
		{ID: 2, Title: "Hammersonic", Genre: "Metal", Description: "loud", Location: "Ancol"},
		{ID: 3, Title: "Soundrenaline", Genre: "Rock", Location: "Bali"},
	}

	tests := []struct {
		term string
		want []int
	}{
		{"", []int{1, 2, 3}},
		{"   ", []int{1, 2, 3}},
		{"JAZZ", []int{1}},
		{"loud", []int{2}},
		{"bali", []int{3}},
		{"a", []int{1, 2, 3}},
		{"opera", []int{}},
	}
	for _, tt := range tests {
		got := SearchItems(items, tt.term)
		ids := make([]int, 0, len(got))
		for _, it := range got {
			ids = append(ids, it.ID)
		}
		if !reflect.DeepEqual(ids, tt.want) {
			t.Errorf("SearchItems(%q) = %v, want %v", tt.term, ids, tt.want)
		}
	}
}

func TestSearchOrdersNoMatchLeavesCollection(t *testing.T) {
	orders := []model.Order{
		{ID: "ORD-AAAAAAAAA", ConcertTitle: "Hammersonic", Status: model.OrderStatusConfirmed},
		{ID: "ORD-BBBBBBBBB", ConcertTitle: "Soundrenaline", ConcertLocation: "Bali"},
	}
	snapshot := append([]model.Order(nil), orders...)

	got := SearchOrders(orders, "nothing-here")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
	if !reflect.DeepEqual(orders, snapshot) {
		t.Error("search modified the collection")
	}

	if got := SearchOrders(orders, "ord-bbb"); len(got) != 1 || got[0].ID != "ORD-BBBBBBBBB" {
		t.Errorf("expected id match, got %+v", got)
	}
	if got := SearchOrders(orders, "confirmed"); len(got) != 1 {
		t.Errorf("expected status match, got %+v", got)
	}
}

func TestSearchWishlist(t *testing.T) {
	entries := []model.WishlistEntry{
		{Item: model.Item{ID: 1, Title: "Java Jazz Festival"}},
		{Item: model.Item{ID: 5, Title: "DWP", Genre: "Electronic"}},
	}
	got := SearchWishlist(entries, "electro")
	if len(got) != 1 || got[0].ID != 5 {
		t.Errorf("unexpected result %+v", got)
	}
}
