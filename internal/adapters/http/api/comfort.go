package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/comfortloop/internal/domain/model"
)

// ComfortDependencies manage the comfort range and occupant votes.
type ComfortDependencies interface {
	ComfortRange(ctx context.Context) (model.ComfortRange, error)
	ConfigureComfortRange(ctx context.Context, p model.Profile) (model.ComfortRange, error)
	ResetComfortRange(ctx context.Context) error
	RecordUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error)
	RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error)
}

// ComfortHandler handles comfort range and user feedback requests.
type ComfortHandler struct {
	deps ComfortDependencies
}

// NewComfortHandler creates a new comfort handler.
func NewComfortHandler(deps ComfortDependencies) *ComfortHandler {
	return &ComfortHandler{deps: deps}
}

// genderField accepts "F"/"M", "female"/"male" or the numeric 0/1 codes.
type genderField model.Gender

func (g *genderField) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(b, `"`))
	if len(b) > 0 && b[0] != '"' {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("gender: %w", err)
		}
		raw = strconv.FormatFloat(f, 'f', -1, 64)
	}
	parsed, err := model.ParseGender(raw)
	if err != nil {
		return err
	}
	*g = genderField(parsed)
	return nil
}

type profileRequest struct {
	Gender *genderField `json:"gender"`
	Age    *float64     `json:"age"`
	BMI    *float64     `json:"bmi"`
}

func (p profileRequest) profile() (model.Profile, error) {
	if p.Gender == nil || p.Age == nil || p.BMI == nil {
		return model.Profile{}, fmt.Errorf("%w: gender, age and bmi are required", model.ErrInvalidProfile)
	}
	return model.Profile{Gender: model.Gender(*p.Gender), Age: *p.Age, BMI: *p.BMI}, nil
}

// HandleGetRange handles GET /comfort_temperature requests.
func (h *ComfortHandler) HandleGetRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_comfort_range"
	rng, err := h.deps.ComfortRange(r.Context())
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rng)
}

// HandleConfigureRange handles POST /comfort_temperature requests.
func (h *ComfortHandler) HandleConfigureRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_comfort_range"
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := req.profile()
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	rng, err := h.deps.ConfigureComfortRange(r.Context(), p)
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, rng)
}

// HandleResetRange handles DELETE /comfort_temperature requests.
func (h *ComfortHandler) HandleResetRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_comfort_range"
	if err := h.deps.ResetComfortRange(r.Context()); err != nil {
		writeKind(w, classify(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userFeedbackRequest struct {
	Feedback string `json:"feedback"`
	Date     string `json:"date,omitempty"`
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("date must be RFC3339 or YYYY-MM-DD")
}

// HandleUserFeedback handles POST /temperature_feedback requests.
func (h *ComfortHandler) HandleUserFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_temperature_feedback"
	var req userFeedbackRequest
	if err := decode(w, r, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	saved, err := h.deps.RecordUserFeedback(r.Context(), model.UserFeedback{Vote: model.Vote(req.Feedback), Date: date})
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// HandleListUserFeedback handles GET /temperature_feedback requests.
func (h *ComfortHandler) HandleListUserFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_temperature_feedback"
	n, err := parseLimit(r)
	if err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	votes, err := h.deps.RecentUserFeedback(r.Context(), n)
	if err != nil {
		writeKind(w, classify(op, err))
		return
	}
	if votes == nil {
		votes = []model.UserFeedback{}
	}
	writeJSON(w, http.StatusOK, votes)
}

var _ json.Unmarshaler = (*genderField)(nil)
