package handler

import (
	"net/http"

	"concerthub-api/internal/service"
	"concerthub-api/pkg/response"
)

// WishlistHandler serves the wishlist collection.
type WishlistHandler struct {
	state *service.State
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(state *service.State) *WishlistHandler {
	return &WishlistHandler{state: state}
}

// List handles GET /api/v1/wishlist?q=
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	entries := service.SearchWishlist(h.state.Wishlist.List(), q)
	response.List(w, entries, q, len(entries))
}

// Count handles GET /api/v1/wishlist/count
func (h *WishlistHandler) Count(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]int{"count": h.state.Wishlist.Count()})
}

// Add handles PUT /api/v1/wishlist/{id}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := concertID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	added, err := h.state.Wishlist.Add(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]interface{}{"id": id, "added": added, "count": h.state.Wishlist.Count()}
	if added {
		response.Created(w, body)
		return
	}
	response.OK(w, body)
}

// Remove handles DELETE /api/v1/wishlist/{id}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := concertID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	removed, err := h.state.Wishlist.Remove(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"id": id, "removed": removed, "count": h.state.Wishlist.Count()})
}
