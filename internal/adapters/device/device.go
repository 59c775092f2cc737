// Package device talks to the air conditioner: a best-effort state read and a setpoint command.
package device

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/comfortloop/internal/domain/model"
)

// Device is the air conditioner as seen by the controller.
type Device interface {
	// ReadState returns the latest device state. ErrUnavailable when nothing can be read.
	ReadState(ctx context.Context) (State, error)
	// SetTargetTemperature commands a new setpoint. Sending the same value twice is harmless.
	SetTargetTemperature(ctx context.Context, value float64, unit string) error
	Name() string
	Close() error
}

// State is the decoded device state.
type State struct {
	CurrentTemperature *float64 `json:"currentTemperature"`
	TargetTemperature  *float64 `json:"targetTemperature"`
	Humidity           *float64 `json:"humidity"`
	Unit               string   `json:"temperature_unit"`
	Power              *bool    `json:"power,omitempty"`
	Mode               string   `json:"mode,omitempty"`
	FanSpeed           string   `json:"fanSpeed,omitempty"`
}

// Snapshot converts the state into the fields the controller records.
func (s State) Snapshot() model.DeviceSnapshot {
	return model.DeviceSnapshot{
		CurrentTemperature: s.CurrentTemperature,
		CurrentHumidity:    s.Humidity,
		TargetTemperature:  s.TargetTemperature,
	}
}

// statePayload is the vendor state document. The value object is either under
// result.value or under response(.value).
type statePayload struct {
	Result *struct {
		Value *stateValue `json:"value"`
	} `json:"result"`
	Response json.RawMessage `json:"response"`
}

type stateValue struct {
	Temperature struct {
		CurrentTemperature *float64 `json:"currentTemperature"`
		TargetTemperature  *float64 `json:"targetTemperature"`
		Unit               string   `json:"unit"`
	} `json:"temperature"`
	AirQualitySensor struct {
		Humidity *float64 `json:"humidity"`
	} `json:"airQualitySensor"`
	Operation struct {
		AirConOperationMode string `json:"airConOperationMode"`
	} `json:"operation"`
	AirConJobMode struct {
		CurrentJobMode string `json:"currentJobMode"`
	} `json:"airConJobMode"`
	AirFlow struct {
		WindStrength string `json:"windStrength"`
	} `json:"airFlow"`
}

// ParseState decodes a vendor state document.
func ParseState(data []byte) (State, error) {
	var p statePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}

	var v *stateValue
	switch {
	case p.Result != nil && p.Result.Value != nil:
		v = p.Result.Value
	case len(p.Response) > 0 && string(p.Response) != "null":
		var wrapped struct {
			Value *stateValue `json:"value"`
		}
		if err := json.Unmarshal(p.Response, &wrapped); err == nil && wrapped.Value != nil {
			v = wrapped.Value
		} else {
			v = &stateValue{}
			if err := json.Unmarshal(p.Response, v); err != nil {
				return State{}, fmt.Errorf("%w: %w", ErrMalformedState, err)
			}
		}
	default:
		return State{}, ErrNoState
	}

	s := State{
		CurrentTemperature: v.Temperature.CurrentTemperature,
		TargetTemperature:  v.Temperature.TargetTemperature,
		Humidity:           v.AirQualitySensor.Humidity,
		Unit:               v.Temperature.Unit,
		Mode:               v.AirConJobMode.CurrentJobMode,
		FanSpeed:           v.AirFlow.WindStrength,
	}
	if s.Unit == "" {
		s.Unit = UnitCelsius
	}
	if mode := v.Operation.AirConOperationMode; mode != "" {
		on := mode == "POWER_ON"
		s.Power = &on
	}
	return s, nil
}

// Temperature units.
const (
	UnitCelsius    = "C"
	UnitFahrenheit = "F"
)

// NormalizeUnit validates a unit, defaulting to Celsius.
func NormalizeUnit(unit string) (string, error) {
	switch u := strings.ToUpper(strings.TrimSpace(unit)); u {
	case "":
		return UnitCelsius, nil
	case UnitCelsius, UnitFahrenheit:
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
}

// command is the setpoint document sent to the device.
type command struct {
	Temperature struct {
		TargetTemperature float64 `json:"targetTemperature"`
		Unit              string  `json:"unit"`
	} `json:"temperature"`
}

func encodeCommand(value float64, unit string) ([]byte, error) {
	var c command
	c.Temperature.TargetTemperature = value
	c.Temperature.Unit = unit
	return json.Marshal(c)
}

// EncodeState renders a state in the result.value layout.
func EncodeState(s State) ([]byte, error) {
	var v stateValue
	v.Temperature.CurrentTemperature = s.CurrentTemperature
	v.Temperature.TargetTemperature = s.TargetTemperature
	v.Temperature.Unit = s.Unit
	v.AirQualitySensor.Humidity = s.Humidity
	v.AirConJobMode.CurrentJobMode = s.Mode
	v.AirFlow.WindStrength = s.FanSpeed
	if s.Power != nil {
		v.Operation.AirConOperationMode = "POWER_OFF"
		if *s.Power {
			v.Operation.AirConOperationMode = "POWER_ON"
		}
	}
	doc := map[string]any{"result": map[string]any{"value": v}}
	return json.Marshal(doc)
}
