package api

import (
	"context"
	"net/http"

	"github.com/okian/comfortloop/internal/domain/control"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/internal/domain/types"
)

// ControlDependencies drive and inspect the adjustment controller.
type ControlDependencies interface {
	OnSchedulerTick(ctx context.Context) types.CycleReport
	RequestCycle(ctx context.Context) (bool, error)
	ControlState() control.GateState
	RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error)
}

// ControlHandler handles controller requests.
type ControlHandler struct {
	deps ControlDependencies
}

// NewControlHandler creates a new control handler.
func NewControlHandler(deps ControlDependencies) *ControlHandler {
	return &ControlHandler{deps: deps}
}

type queuedResponse struct {
	Queued bool `json:"queued"`
}

// HandleTick handles POST /control/tick. By default the cycle runs inline and its
// report is returned; with ?async=true the tick is handed to the worker.
func (h *ControlHandler) HandleTick(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_control_tick"
	if r.URL.Query().Get("async") == "true" {
		queued, err := h.deps.RequestCycle(r.Context())
		if err != nil {
			writeKind(w, classify(op, err))
			return
		}
		writeJSON(w, http.StatusAccepted, queuedResponse{Queued: queued})
		return
	}
	// The cycle outlives a disconnecting client so it can finish what it started.
	writeJSON(w, http.StatusOK, h.deps.OnSchedulerTick(context.WithoutCancel(r.Context())))
}

// HandleState handles GET /control/state requests.
func (h *ControlHandler) HandleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.ControlState())
}

// HandleFeedback handles GET /feedback?limit=n requests.
func (h *ControlHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_feedback"
	n, err := parseLimit(r)
	if err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	recs, err := h.deps.RecentFeedback(r.Context(), n)
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	if recs == nil {
		recs = []model.FeedbackRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
