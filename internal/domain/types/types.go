// Package types contains result and status types shared by the service and its adapters.
package types

import (
	"time"

	"github.com/okian/comfortloop/internal/domain/model"
)

// Outcome of one adjustment cycle.
type Outcome string

// Cycle outcomes. Only OutcomeDecided advances the debounce window.
const (
	OutcomeDebounced           Outcome = "debounced"
	OutcomeInFlight            Outcome = "in_flight"
	OutcomeNoRange             Outcome = "no_range"
	OutcomeInsufficientHistory Outcome = "insufficient_history"
	OutcomeDeviceUnavailable   Outcome = "device_unavailable"
	OutcomeStoreUnavailable    Outcome = "store_unavailable"
	OutcomeDecided             Outcome = "decided"
)

// CycleReport describes what a cycle did.
type CycleReport struct {
	Outcome     Outcome   `json:"outcome"`
	At          time.Time `json:"at"`
	Majority    string    `json:"majority,omitempty"`
	ActionTaken string    `json:"action_taken,omitempty"`
	// NewTarget is the setpoint the cycle decided to send.
	NewTarget *float64 `json:"new_target,omitempty"`
	// Commanded reports whether the device accepted NewTarget.
	Commanded bool   `json:"commanded"`
	Recorded  bool   `json:"recorded"`
	Detail    string `json:"detail,omitempty"`
}

// Estimate is the result of classifying one skin-temperature estimate.
type Estimate struct {
	PredictedSkinTemp float64   `json:"predicted_skin_temp"`
	Classification    string    `json:"classification"`
	Recorded          bool      `json:"recorded"`
	At                time.Time `json:"at"`
}

// Stats summarises service activity.
type Stats struct {
	EstimatesClassified int64      `json:"estimates_classified"`
	EstimatesDuplicate  int64      `json:"estimates_duplicate"`
	CyclesRun           int64      `json:"cycles_run"`
	CyclesDecided       int64      `json:"cycles_decided"`
	CommandsIssued      int64      `json:"commands_issued"`
	QueueDepth          int        `json:"queue_depth"`
	LastAdjustmentTime  *time.Time `json:"last_adjustment_time"`
	Running             bool       `json:"running"`
}

// ComponentHealth is the status of one collaborator.
type ComponentHealth struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Health statuses.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
	StatusDisabled    = "disabled"
)

// HealthSample is one wearable reading. Vitals are required; the profile fields
// are optional and only used once to derive the comfort range.
type HealthSample struct {
	SampleID         string   `json:"sampleId,omitempty"`
	HeartRate        *float64 `json:"heartRate"`
	HRV              *float64 `json:"HRV"`
	OxygenSaturation *float64 `json:"oxygenSaturation"`
	BMI              *float64 `json:"bmi,omitempty"`
	Age              *float64 `json:"age,omitempty"`
	// Gender uses the wearable encoding: 0 female, 1 male.
	Gender *float64 `json:"gender,omitempty"`
}

// Health sample statuses.
const (
	SampleAccepted  = "success"
	SampleDuplicate = "duplicate"
)

// HealthResult is the outcome of ingesting a HealthSample.
type HealthResult struct {
	Status            string              `json:"status"`
	PredictedSkinTemp *float64            `json:"predicted_skin_temp,omitempty"`
	Classification    string              `json:"classification,omitempty"`
	ComfortRange      *model.ComfortRange `json:"comfort_temperature_range,omitempty"`
	Recorded          bool                `json:"recorded"`
}
