package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"concerthub-api/internal/kvstore"
	"concerthub-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// Handler contains shared HTTP handlers and their dependencies.
type Handler struct {
	backend   kvstore.Backend
	storeType string
	version   string
	catalog   func() int
}

// New creates a new handler. catalogSize reports how many concerts are
// loaded.
func New(backend kvstore.Backend, storeType, version string, catalogSize func() int) *Handler {
	return &Handler{
		backend:   backend,
		storeType: storeType,
		version:   version,
		catalog:   catalogSize,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	response.OK(w, resp)
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := []Check{
		{Name: "api", Status: "ok"},
		h.storeCheck(r.Context()),
		h.catalogCheck(),
	}

	allReady := true
	for _, check := range checks {
		if check.Status != "ok" {
			allReady = false
			break
		}
	}

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	if !allReady {
		response.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	response.OK(w, resp)
}

func (h *Handler) storeCheck(ctx context.Context) Check {
	check := Check{Name: "store:" + h.storeType, Status: "ok"}
	if h.backend == nil {
		check.Status = "not_configured"
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := h.backend.Exists(ctx, "concerthub:ready"); err != nil {
		check.Status = "error"
		check.Error = err.Error()
	}
	return check
}

func (h *Handler) catalogCheck() Check {
	if h.catalog == nil || h.catalog() == 0 {
		return Check{Name: "catalog", Status: "empty"}
	}
	return Check{Name: "catalog", Status: "ok"}
}

// StatusChecks represents the checks in status response
type StatusChecks struct {
	Database string  `json:"database"`
	MemoryMB float64 `json:"memory_mb"`
}

// StatusResponse represents the unified status response for uptime monitors
type StatusResponse struct {
	Service       string       `json:"service"`
	Status        string       `json:"status"`
	Timestamp     string       `json:"timestamp"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	PingMS        int64        `json:"ping_ms"`
	Checks        StatusChecks `json:"checks"`
}

// Status handles GET /api/status - unified health check for uptime monitors
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	requestStart := time.Now()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryMB := float64(memStats.Alloc) / 1024 / 1024

	store := h.storeCheck(r.Context())

	pingMS := time.Since(requestStart).Milliseconds()
	uptimeSeconds := int64(time.Since(StartTime).Seconds())

	status := "ok"
	if store.Status != "ok" {
		status = "degraded"
	}

	resp := StatusResponse{
		Service:       "concerthub-api",
		Status:        status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: uptimeSeconds,
		PingMS:        pingMS,
		Checks: StatusChecks{
			Database: store.Status,
			MemoryMB: float64(int(memoryMB*100)) / 100,
		},
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.OK(w, resp)
}
