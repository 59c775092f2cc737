package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/metrics"
)

// StatusDependencies report service status.
type StatusDependencies interface {
	Health(ctx context.Context) map[string]types.ComponentHealth
	GetStats(ctx context.Context) types.Stats
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps StatusDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps StatusDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status     string                           `json:"status"`
	Components map[string]types.ComponentHealth `json:"components"`
}

// HandleLiveness handles GET /healthz.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": types.StatusOK})
}

// HandleHealth handles GET /health. Only an unreachable store makes the service
// unhealthy; a missing device or model degrades it.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	components := h.deps.Health(r.Context())
	resp := healthResponse{Status: types.StatusOK, Components: components}
	status := http.StatusOK
	for name, c := range components {
		if c.Status == types.StatusOK {
			continue
		}
		if name == "store" {
			resp.Status, status = types.StatusUnavailable, http.StatusServiceUnavailable
			break
		}
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}

// MetricsHandler serves the Prometheus registry.
func (h *HealthHandler) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
