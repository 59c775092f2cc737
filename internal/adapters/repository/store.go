// Package repository persists comfort history, the comfort range and controller state.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/comfortloop/internal/domain/model"
)

// FeedbackStore is the append-only comfort history.
type FeedbackStore interface {
	// AppendFeedback inserts one record. Empty ID and zero CreatedAt are filled in.
	AppendFeedback(ctx context.Context, rec model.FeedbackRecord) (model.FeedbackRecord, error)
	// RecentFeedback returns up to n records, newest first by CreatedAt.
	RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error)
}

// ComfortStore holds the single comfort range of the room.
type ComfortStore interface {
	// ComfortRange returns ErrNotFound when no range has been configured.
	ComfortRange(ctx context.Context) (model.ComfortRange, error)
	// SaveComfortRange stores r. Returns ErrAlreadyConfigured if a range exists.
	SaveComfortRange(ctx context.Context, r model.ComfortRange) (model.ComfortRange, error)
	// ResetComfortRange removes the stored range. Missing ranges are not an error.
	ResetComfortRange(ctx context.Context) error
}

// StateStore persists the controller debounce state.
type StateStore interface {
	ControllerState(ctx context.Context) (model.ControllerState, error)
	SaveControllerState(ctx context.Context, s model.ControllerState) error
}

// UserFeedbackStore keeps explicit occupant votes.
type UserFeedbackStore interface {
	AppendUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error)
	RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	FeedbackStore
	ComfortStore
	StateStore
	UserFeedbackStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Name identifies the backend in logs and health output.
	Name() string
	Close() error
}

func prepareFeedback(rec model.FeedbackRecord, now func() time.Time) (model.FeedbackRecord, error) {
	if !rec.Classification.Valid() {
		return rec, model.ErrUnknownClassification
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now()
	}
	return rec, nil
}

func prepareUserFeedback(f model.UserFeedback, now func() time.Time) model.UserFeedback {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
	}
	if f.Date.IsZero() {
		f.Date = f.CreatedAt
	}
	return f
}

func prepareRange(r model.ComfortRange, now func() time.Time) (model.ComfortRange, error) {
	if err := r.Validate(); err != nil {
		return r, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	return r, nil
}

func checkLimit(n int) error {
	if n <= 0 {
		return ErrInvalidLimit
	}
	return nil
}
