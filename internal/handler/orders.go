package handler

import (
	"net/http"

	"concerthub-api/internal/service"
	"concerthub-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// OrderHandler serves recorded orders.
type OrderHandler struct {
	state *service.State
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(state *service.State) *OrderHandler {
	return &OrderHandler{state: state}
}

// List handles GET /api/v1/orders?q=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	orders := service.SearchOrders(h.state.Orders.List(), q)
	response.List(w, orders, q, len(orders))
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.state.Orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, order)
}
