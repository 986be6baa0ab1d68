package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"concerthub-api/internal/events"
	"concerthub-api/internal/kvstore"
	"concerthub-api/internal/service"
	"concerthub-api/pkg/response"
)

// statsBackend is implemented by backends that can describe their contents.
type statsBackend interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	state     *service.State
	backend   kvstore.Backend
	broker    *events.Broker
	storeType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(state *service.State, backend kvstore.Backend, broker *events.Broker, storeType string) *AdminHandler {
	return &AdminHandler{
		state:     state,
		backend:   backend,
		broker:    broker,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	// Store stats
	if sb, ok := h.backend.(statsBackend); ok {
		storeStats, err := sb.Stats(ctx)
		if err == nil {
			storeStats["status"] = "connected"
			stats["store"] = storeStats
		} else {
			stats["store"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["store"] = map[string]interface{}{
			"status": "no_stats",
		}
	}

	stats["app"] = h.state.Stats()

	if h.broker != nil {
		stats["event_subscribers"] = h.broker.Subscribers()
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// GetHealth handles GET /api/v1/admin/health
func (h *AdminHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.state.Wishlist.Consistent(); err != nil {
		status = "inconsistent"
	}
	response.OK(w, map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
