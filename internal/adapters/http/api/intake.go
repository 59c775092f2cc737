package api

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/okian/comfortloop/internal/domain/types"
)

// IntakeDependencies accept wearable samples and raw estimates.
type IntakeDependencies interface {
	SubmitHealthData(ctx context.Context, in types.HealthSample) (types.HealthResult, error)
	OnNewEstimate(ctx context.Context, predictedSkinTemp float64) types.Estimate
}

// IntakeHandler handles health data and estimate requests.
type IntakeHandler struct {
	deps IntakeDependencies
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(deps IntakeDependencies) *IntakeHandler {
	return &IntakeHandler{deps: deps}
}

// HandleHealthData handles POST /healthdata requests.
func (h *IntakeHandler) HandleHealthData(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_healthdata"
	var req types.HealthSample
	if err := decode(w, r, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.SubmitHealthData(r.Context(), req)
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type estimateRequest struct {
	PredictedSkinTemp *float64 `json:"predicted_skin_temp"`
}

// HandleEstimate handles POST /estimates requests.
func (h *IntakeHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_estimate"
	var req estimateRequest
	if err := decode(w, r, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.PredictedSkinTemp == nil || math.IsNaN(*req.PredictedSkinTemp) || math.IsInf(*req.PredictedSkinTemp, 0) {
		writeKind(w, WrapKind(op, ErrBadRequest, errors.New("predicted_skin_temp is required")))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.OnNewEstimate(r.Context(), *req.PredictedSkinTemp))
}
