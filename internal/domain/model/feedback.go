package model

import (
	"strings"
	"time"
)

// Action names a controller decision recorded in FeedbackRecord.ActionTaken.
type Action string

// Controller action vocabulary.
const (
	ActionNone                    Action = "none"
	ActionHumidityCheck           Action = "humidity_check"
	ActionWaitingForTarget        Action = "waiting_for_target"
	ActionTempDown                Action = "temp_down"
	ActionTempUp                  Action = "temp_up"
	ActionTempAdjustmentCancelled Action = "temp_adjustment_cancelled"
)

// JoinActions renders actions in the stored "a, b" form. An empty list renders as "none".
func JoinActions(actions []Action) string {
	if len(actions) == 0 {
		return string(ActionNone)
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

// Record sources.
const (
	SourceEstimate   = "estimate"
	SourceController = "controller"
)

// DeviceSnapshot is a best-effort view of the air conditioner. Nil fields were not reported.
type DeviceSnapshot struct {
	CurrentTemperature *float64 `json:"current_temperature"`
	CurrentHumidity    *float64 `json:"current_humidity"`
	TargetTemperature  *float64 `json:"target_temperature"`
}

// FeedbackRecord is one append-only row of the comfort history.
// Estimate rows have a nil ActionTaken; controller rows always carry one.
type FeedbackRecord struct {
	ID                string         `json:"id"`
	Source            string         `json:"source"`
	Classification    Classification `json:"classification"`
	PredictedSkinTemp *float64       `json:"predicted_skin_temp,omitempty"`
	CurrentTemp       *float64       `json:"current_temp"`
	CurrentHumidity   *float64       `json:"current_humidity"`
	TargetTemp        *float64       `json:"target_temp"`
	TargetHumidity    *float64       `json:"target_humidity"`
	ActionTaken       *string        `json:"action_taken"`
	CreatedAt         time.Time      `json:"created_at"`
}

// WithSnapshot copies the device fields of s into the record.
func (r *FeedbackRecord) WithSnapshot(s DeviceSnapshot) {
	r.CurrentTemp = s.CurrentTemperature
	r.CurrentHumidity = s.CurrentHumidity
	r.TargetTemp = s.TargetTemperature
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// ControllerState is the debounce state of the adjustment controller.
type ControllerState struct {
	LastAdjustmentTime *time.Time `json:"last_adjustment_time"`
}
