package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"concerthub-api/pkg/money"
)

func TestDefaultItems(t *testing.T) {
	items, err := DefaultItems()
	if err != nil {
		t.Fatalf("DefaultItems: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected embedded seed to contain concerts")
	}

	for _, it := range items {
		if it.Price.Currency != "IDR" || it.Price.Amount <= 0 {
			t.Errorf("concert %d: unexpected price %+v", it.ID, it.Price)
		}
		if it.Wishlist {
			t.Errorf("concert %d: seed must not set wishlist", it.ID)
		}
	}
}

func TestParseTOML(t *testing.T) {
	feed := `
[[concerts]]
id = 10
title = "Prambanan Jazz"
genre = "Jazz"
location = "Candi Prambanan"
price = "Rp 650000"
images = ["a.jpg"]
`
	items, err := ParseTOML([]byte(feed))
	if err != nil {
		t.Fatalf("ParseTOML: %v", err)
	}
	if len(items) != 1 || items[0].ID != 10 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Price != money.IDR(650000) {
		t.Errorf("unexpected price %+v", items[0].Price)
	}
}

func TestParseRejectsBadFeeds(t *testing.T) {
	feeds := map[string]string{
		"duplicate id": "concerts:\n  - {id: 1, title: a, price: Rp 1}\n  - {id: 1, title: b, price: Rp 2}\n",
		"bad price":    "concerts:\n  - {id: 1, title: a, price: free}\n",
		"zero id":      "concerts:\n  - {id: 0, title: a, price: Rp 1}\n",
	}
	for name, feed := range feeds {
		if _, err := ParseYAML([]byte(feed)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.yml")
	os.WriteFile(path, []byte("concerts:\n  - {id: 7, title: x, price: Rp 100}\n"), 0o644)

	items, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(items) != 1 || items[0].ID != 7 {
		t.Errorf("unexpected items: %+v", items)
	}

	if _, err := LoadFile(filepath.Join(dir, "feed.ini")); err == nil {
		t.Error("expected error for missing/unsupported file")
	}
}

func TestToggleAndSetWishlist(t *testing.T) {
	items, _ := DefaultItems()
	c := New(items)
	id := items[0].ID

	on, err := c.ToggleWishlist(id)
	if err != nil || !on {
		t.Fatalf("ToggleWishlist: on=%v err=%v", on, err)
	}
	if it, _ := c.FindByID(id); !it.Wishlist {
		t.Error("expected flag set after toggle")
	}

	on, _ = c.ToggleWishlist(id)
	if on {
		t.Error("expected second toggle to clear the flag")
	}

	if err := c.SetWishlist(id, true); err != nil {
		t.Fatalf("SetWishlist: %v", err)
	}
	if ids := c.WishlistedIDs(); len(ids) != 1 || ids[0] != id {
		t.Errorf("unexpected wishlisted ids %v", ids)
	}

	if _, err := c.ToggleWishlist(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, ok := c.FindByID(9999); ok {
		t.Error("expected unknown id to be missing")
	}
}

func TestAllReturnsCopies(t *testing.T) {
	items, _ := DefaultItems()
	c := New(items)

	all := c.All()
	all[0].Title = "changed"
	all[0].Images[0] = "changed.jpg"

	it, _ := c.FindByID(all[0].ID)
	if it.Title == "changed" || it.Images[0] == "changed.jpg" {
		t.Error("mutating All() result leaked into catalog")
	}
}
