package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/pkg/metrics"
)

// Instrument wraps a Store so every call records latency and failures.
func Instrument(s Store) Store {
	return &instrumented{Store: s}
}

type instrumented struct {
	Store
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000.0)
	// expected outcomes are not failures
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrAlreadyConfigured) {
		metrics.RecordStoreError(op)
	}
}

func (i *instrumented) AppendFeedback(ctx context.Context, rec model.FeedbackRecord) (model.FeedbackRecord, error) {
	start := time.Now()
	out, err := i.Store.AppendFeedback(ctx, rec)
	observe("append_feedback", start, err)
	return out, err
}

func (i *instrumented) RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error) {
	start := time.Now()
	out, err := i.Store.RecentFeedback(ctx, n)
	observe("recent_feedback", start, err)
	return out, err
}

func (i *instrumented) ComfortRange(ctx context.Context) (model.ComfortRange, error) {
	start := time.Now()
	out, err := i.Store.ComfortRange(ctx)
	observe("comfort_range", start, err)
	return out, err
}

func (i *instrumented) SaveComfortRange(ctx context.Context, r model.ComfortRange) (model.ComfortRange, error) {
	start := time.Now()
	out, err := i.Store.SaveComfortRange(ctx, r)
	observe("save_comfort_range", start, err)
	return out, err
}

func (i *instrumented) ResetComfortRange(ctx context.Context) error {
	start := time.Now()
	err := i.Store.ResetComfortRange(ctx)
	observe("reset_comfort_range", start, err)
	return err
}

func (i *instrumented) ControllerState(ctx context.Context) (model.ControllerState, error) {
	start := time.Now()
	out, err := i.Store.ControllerState(ctx)
	observe("controller_state", start, err)
	return out, err
}

func (i *instrumented) SaveControllerState(ctx context.Context, st model.ControllerState) error {
	start := time.Now()
	err := i.Store.SaveControllerState(ctx, st)
	observe("save_controller_state", start, err)
	return err
}

func (i *instrumented) AppendUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error) {
	start := time.Now()
	out, err := i.Store.AppendUserFeedback(ctx, f)
	observe("append_user_feedback", start, err)
	return out, err
}

func (i *instrumented) RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error) {
	start := time.Now()
	out, err := i.Store.RecentUserFeedback(ctx, n)
	observe("recent_user_feedback", start, err)
	return out, err
}
