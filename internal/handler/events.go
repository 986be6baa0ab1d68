package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"concerthub-api/internal/events"
)

// EventsHandler streams refresh signals as server-sent events.
type EventsHandler struct {
	broker    *events.Broker
	keepalive time.Duration
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(broker *events.Broker) *EventsHandler {
	return &EventsHandler{broker: broker, keepalive: 25 * time.Second}
}

// Stream handles GET /api/v1/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ch, cancel := h.broker.Subscribe()
	defer cancel()

	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(e.Payload)
			if err != nil {
				log.Printf("[Events] Failed to encode %s: %v", e.Type, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
