// Package control holds the adjustment decision and the debounce gate of the comfort controller.
package control

import (
	"math"

	"github.com/okian/comfortloop/internal/domain/model"
)

// Params tune a single adjustment decision.
type Params struct {
	// Step is the setpoint change applied per decided cycle.
	Step float64
	// ConvergenceTolerance is the largest |current-target| still treated as converged.
	ConvergenceTolerance float64
	// TargetHumidity triggers humidity_check when the room is more humid.
	TargetHumidity float64
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{Step: 0.5, ConvergenceTolerance: 0.5, TargetHumidity: 60.0}
}

// Decision is the outcome of one cycle once the majority and a device snapshot are known.
type Decision struct {
	Majority model.Classification
	Actions  []model.Action
	// Command is the setpoint to send, nil when the device must not be touched.
	Command *float64
	// TemperatureUnknown is set when HOT/COLD could not be acted on because the device
	// did not report current or target temperature.
	TemperatureUnknown bool
}

// ActionTaken renders the joined action string stored on the cycle record.
func (d Decision) ActionTaken() string {
	return model.JoinActions(d.Actions)
}

// Decide applies the humidity check, the majority gate, the convergence gate and the
// comfort range bound in that order. It never touches the device itself.
func Decide(majority model.Classification, snap model.DeviceSnapshot, r model.ComfortRange, p Params) Decision {
	d := Decision{Majority: majority}

	if snap.CurrentHumidity != nil && *snap.CurrentHumidity > p.TargetHumidity {
		d.Actions = append(d.Actions, model.ActionHumidityCheck)
	}

	if majority != model.Hot && majority != model.Cold {
		d.Actions = append(d.Actions, model.ActionNone)
		return d
	}

	if snap.CurrentTemperature == nil || snap.TargetTemperature == nil {
		d.TemperatureUnknown = true
		return d
	}

	current, target := *snap.CurrentTemperature, *snap.TargetTemperature
	if math.Abs(current-target) > p.ConvergenceTolerance {
		d.Actions = append(d.Actions, model.ActionWaitingForTarget)
		return d
	}

	next, action := target-p.Step, model.ActionTempDown
	if majority == model.Cold {
		next, action = target+p.Step, model.ActionTempUp
	}
	next = math.Round(next*10) / 10

	if !r.Contains(next) {
		d.Actions = append(d.Actions, model.ActionTempAdjustmentCancelled)
		return d
	}

	d.Actions = append(d.Actions, action)
	d.Command = &next
	return d
}
