package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/comfortloop/internal/adapters/device"
)

// DeviceDependencies expose the air conditioner.
type DeviceDependencies interface {
	DeviceState(ctx context.Context) (device.State, error)
	ControlDevice(ctx context.Context, action string, target float64, unit string) error
}

// DeviceHandler handles air conditioner requests.
type DeviceHandler struct {
	deps DeviceDependencies
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(deps DeviceDependencies) *DeviceHandler {
	return &DeviceHandler{deps: deps}
}

// HandleState handles GET /air_conditioner/state requests.
func (h *DeviceHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_device_state"
	st, err := h.deps.DeviceState(r.Context())
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type controlRequest struct {
	Action            string   `json:"action"`
	TargetTemperature *float64 `json:"target_temperature"`
	Unit              string   `json:"unit,omitempty"`
}

type controlResponse struct {
	Status            string  `json:"status"`
	Action            string  `json:"action"`
	TargetTemperature float64 `json:"target_temperature"`
}

// HandleControl handles POST /air_conditioner/control requests.
func (h *DeviceHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_device_control"
	var req controlRequest
	if err := decode(w, r, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.TargetTemperature == nil {
		writeKind(w, WrapKind(op, ErrBadRequest, errors.New("target_temperature is required")))
		return
	}
	if err := h.deps.ControlDevice(r.Context(), req.Action, *req.TargetTemperature, req.Unit); err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, controlResponse{Status: "success", Action: req.Action, TargetTemperature: *req.TargetTemperature})
}
