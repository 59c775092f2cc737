// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/comfortloop/internal/adapters/repository"
	service "github.com/okian/comfortloop/internal/app"
	"github.com/okian/comfortloop/internal/domain/model"
)

// Request limits.
const (
	maxBodyBytes   = 1 << 16
	defaultLimit   = 20
	maxLimit       = 500
	requestTimeout = 60 * time.Second
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	IntakeDependencies
	ComfortDependencies
	DeviceDependencies
	ControlDependencies
	StatusDependencies
}

// Server wires HTTP routes for the comfort API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	intakeHandler  *IntakeHandler
	comfortHandler *ComfortHandler
	deviceHandler  *DeviceHandler
	controlHandler *ControlHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		intakeHandler:  NewIntakeHandler(deps),
		comfortHandler: NewComfortHandler(deps),
		deviceHandler:  NewDeviceHandler(deps),
		controlHandler: NewControlHandler(deps),
	}
}

// Router builds a chi router with the standard middleware stack and every route.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleLiveness, "healthz"))
	r.Get("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	r.Handle("/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Post("/healthdata", MetricsMiddleware(s.intakeHandler.HandleHealthData, "healthdata"))
	r.Post("/estimates", MetricsMiddleware(s.intakeHandler.HandleEstimate, "estimates"))

	r.Get("/comfort_temperature", MetricsMiddleware(s.comfortHandler.HandleGetRange, "comfort_temperature"))
	r.Post("/comfort_temperature", MetricsMiddleware(s.comfortHandler.HandleConfigureRange, "comfort_temperature"))
	r.Delete("/comfort_temperature", MetricsMiddleware(s.comfortHandler.HandleResetRange, "comfort_temperature"))
	r.Get("/temperature_feedback", MetricsMiddleware(s.comfortHandler.HandleListUserFeedback, "temperature_feedback"))
	r.Post("/temperature_feedback", MetricsMiddleware(s.comfortHandler.HandleUserFeedback, "temperature_feedback"))

	r.Get("/air_conditioner/state", MetricsMiddleware(s.deviceHandler.HandleState, "air_conditioner_state"))
	r.Post("/air_conditioner/control", MetricsMiddleware(s.deviceHandler.HandleControl, "air_conditioner_control"))

	r.Post("/control/tick", MetricsMiddleware(s.controlHandler.HandleTick, "control_tick"))
	r.Get("/control/state", MetricsMiddleware(s.controlHandler.HandleState, "control_state"))
	r.Get("/feedback", MetricsMiddleware(s.controlHandler.HandleFeedback, "feedback"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeKind writes a Kind with the status its kind maps to.
func writeKind(w http.ResponseWriter, k *Kind) {
	switch {
	case errors.Is(k, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", k)
	case errors.Is(k, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", k)
	case errors.Is(k, ErrConflict):
		writeError(w, http.StatusConflict, "conflict", k)
	case errors.Is(k, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", k)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", k)
	}
}

// classify maps service and store errors to an API kind.
func classify(op string, err error) *Kind {
	switch {
	case errors.Is(err, service.ErrInvalidSample),
		errors.Is(err, service.ErrInvalidCommand),
		errors.Is(err, model.ErrInvalidProfile),
		errors.Is(err, model.ErrUnknownVote),
		errors.Is(err, repository.ErrInvalidLimit):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, repository.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, repository.ErrAlreadyConfigured):
		return WrapKind(op, ErrConflict, err)
	case errors.Is(err, service.ErrDeviceUnavailable),
		errors.Is(err, service.ErrNoDevice),
		errors.Is(err, service.ErrPredictionFailed),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.DeadlineExceeded):
		return WrapKind(op, ErrUnavailable, err)
	default:
		return WrapKind(op, ErrInternal, err)
	}
}

// decode reads a JSON body into v, rejecting unknown trailing data.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// parseLimit reads ?limit=n with a default and an upper bound.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, errors.New("limit must be between 1 and 500")
	}
	return n, nil
}
