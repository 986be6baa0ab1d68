package handler

import (
	"net/http"

	"concerthub-api/internal/middleware"
	"concerthub-api/internal/service"
	"concerthub-api/pkg/apierror"
	"concerthub-api/pkg/response"
)

// ConcertHandler serves the catalog.
type ConcertHandler struct {
	state *service.State
}

// NewConcertHandler creates a new concert handler.
func NewConcertHandler(state *service.State) *ConcertHandler {
	return &ConcertHandler{state: state}
}

// List handles GET /api/v1/concerts?q=
func (h *ConcertHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	items := service.SearchItems(h.state.Catalog.All(), q)
	response.List(w, items, q, len(items))
}

// Get handles GET /api/v1/concerts/{id}
func (h *ConcertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := concertID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	item, ok := h.state.Catalog.FindByID(id)
	if !ok {
		response.Error(w, apierror.NotFound("Concert not found."))
		return
	}
	response.OK(w, item)
}

// ToggleWishlist handles POST /api/v1/concerts/{id}/wishlist
func (h *ConcertHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := concertID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	on, err := h.state.Wishlist.Toggle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if isFormPost(r) {
		redirectBack(w, r, "/app/home")
		return
	}

	response.OK(w, map[string]interface{}{
		"id":             id,
		"wishlist":       on,
		"wishlist_count": h.state.Wishlist.Count(),
	})
}

// Select handles POST /api/v1/concerts/{id}/select
func (h *ConcertHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, err := concertID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := h.state.Checkout.Select(r.Context(), middleware.GetSessionID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, c)
}
