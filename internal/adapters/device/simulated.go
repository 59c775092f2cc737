package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/okian/comfortloop/internal/domain/model"
)

// Simulated is an in-process air conditioner. The room temperature drifts toward
// the setpoint each time Drift is called.
type Simulated struct {
	mu        sync.Mutex
	current   float64
	target    float64
	humidity  float64
	unit      string
	available bool
	commands  int
}

// NewSimulated creates a powered-on device at the given readings.
func NewSimulated(current, target, humidity float64) *Simulated {
	return &Simulated{
		current:   current,
		target:    target,
		humidity:  humidity,
		unit:      UnitCelsius,
		available: true,
	}
}

func (s *Simulated) Name() string { return "simulated" }

// SetAvailable toggles failure injection. An unavailable device fails every call.
func (s *Simulated) SetAvailable(ok bool) {
	s.mu.Lock()
	s.available = ok
	s.mu.Unlock()
}

// SetReadings overwrites the room readings.
func (s *Simulated) SetReadings(current, humidity float64) {
	s.mu.Lock()
	s.current, s.humidity = current, humidity
	s.mu.Unlock()
}

// Commands returns how many setpoint commands were accepted.
func (s *Simulated) Commands() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commands
}

// Drift moves the room temperature toward the setpoint by at most step degrees.
func (s *Simulated) Drift(step float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	diff := s.target - s.current
	if math.Abs(diff) <= step {
		s.current = s.target
		return
	}
	s.current += math.Copysign(step, diff)
}

func (s *Simulated) ReadState(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return State{}, ErrUnavailable
	}
	on := true
	return State{
		CurrentTemperature: model.Float(s.current),
		TargetTemperature:  model.Float(s.target),
		Humidity:           model.Float(s.humidity),
		Unit:               s.unit,
		Power:              &on,
		Mode:               "COOL",
		FanSpeed:           "AUTO",
	}, nil
}

func (s *Simulated) SetTargetTemperature(ctx context.Context, value float64, unit string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unit, err := NormalizeUnit(unit)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.available {
		return ErrUnavailable
	}
	s.target, s.unit = value, unit
	s.commands++
	return nil
}

func (s *Simulated) Close() error { return nil }

// Handler serves the cloud device API used by HTTPDevice for the given device id.
func (s *Simulated) Handler(deviceID string) http.Handler {
	r := chi.NewRouter()
	r.Route("/devices/"+deviceID, func(r chi.Router) {
		r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
			st, err := s.ReadState(req.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			data, err := EncodeState(st)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		})
		r.Post("/control", func(w http.ResponseWriter, req *http.Request) {
			var c command
			body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
			if err == nil {
				err = json.Unmarshal(body, &c)
			}
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid command: %v", err), http.StatusBadRequest)
				return
			}
			if err := s.SetTargetTemperature(req.Context(), c.Temperature.TargetTemperature, c.Temperature.Unit); err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, ErrUnavailable) {
					status = http.StatusServiceUnavailable
				}
				http.Error(w, err.Error(), status)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		})
	})
	return r
}
