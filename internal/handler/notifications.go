package handler

import (
	"net/http"

	"concerthub-api/internal/service"
	"concerthub-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the notification log.
type NotificationHandler struct {
	state *service.State
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(state *service.State) *NotificationHandler {
	return &NotificationHandler{state: state}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.state.Notifications.List()
	response.List(w, items, "", len(items))
}

// Badge handles GET /api/v1/notifications/badge
func (h *NotificationHandler) Badge(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.state.Notifications.Badge())
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Notifications.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, h.state.Notifications.Badge())
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Notifications.MarkAllRead(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, h.state.Notifications.Badge())
}

// Delete handles DELETE /api/v1/notifications/{id}
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Notifications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// Clear handles DELETE /api/v1/notifications
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Notifications.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}
