package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler provides HTTP health check endpoints for the risk engine.
type HealthHandler struct {
	logger    *slog.Logger
	pool      *pgxpool.Pool
	startTime time.Time
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(pool *pgxpool.Pool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		pool:      pool,
		startTime: time.Now(),
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Service: "risk-engine",
		Uptime:  time.Since(h.startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Readyz handles readiness probe requests. The database must answer a
// ping for the service to report ready.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	checks := map[string]string{"database": "ok"}

	if err := h.pool.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness database ping failed", "error", err)
		checks["database"] = "unavailable"
		status = "not ready"
		code = http.StatusServiceUnavailable
	}

	resp := ReadinessResponse{
		Status:  status,
		Service: "risk-engine",
		Checks:  checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
