package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/comfortloop/internal/adapters/repository"
	"github.com/okian/comfortloop/internal/domain/comfort"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/pkg/logger"
	"github.com/okian/comfortloop/pkg/metrics"
)

// ComfortRange returns the stored range, repository.ErrNotFound when none is configured.
func (s *Service) ComfortRange(ctx context.Context) (model.ComfortRange, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.ComfortRange(sctx)
}

// ConfigureComfortRange resolves the range for p and persists it. When a range is
// already stored it is returned unchanged with repository.ErrAlreadyConfigured.
func (s *Service) ConfigureComfortRange(ctx context.Context, p model.Profile) (model.ComfortRange, error) {
	if err := p.Validate(); err != nil {
		return model.ComfortRange{}, err
	}
	rng := comfort.Resolve(p)

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	saved, err := s.store.SaveComfortRange(sctx, rng)
	if err != nil {
		return saved, err
	}

	metrics.UpdateComfortRange(saved.MinTemp, saved.MaxTemp)
	s.logger.Info(ctx, "comfort range configured",
		logger.String("gender", string(p.Gender)),
		logger.Float64("age", p.Age),
		logger.Float64("bmi", p.BMI),
		logger.Float64("min_temp", saved.MinTemp),
		logger.Float64("max_temp", saved.MaxTemp))
	return saved, nil
}

// EnsureComfortRange returns the stored range, resolving and persisting one from p
// only when none exists yet.
func (s *Service) EnsureComfortRange(ctx context.Context, p model.Profile) (model.ComfortRange, error) {
	rng, err := s.ComfortRange(ctx)
	if err == nil {
		return rng, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.ComfortRange{}, err
	}

	rng, err = s.ConfigureComfortRange(ctx, p)
	if errors.Is(err, repository.ErrAlreadyConfigured) {
		return rng, nil
	}
	return rng, err
}

// ResetComfortRange removes the stored range so a new profile can be configured.
func (s *Service) ResetComfortRange(ctx context.Context) error {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.ResetComfortRange(sctx); err != nil {
		return fmt.Errorf("reset comfort range: %w", err)
	}
	s.logger.Info(ctx, "comfort range reset")
	return nil
}

// RecordUserFeedback stores an explicit occupant vote. Votes are kept for later
// analysis and do not take part in the controller majority.
func (s *Service) RecordUserFeedback(ctx context.Context, f model.UserFeedback) (model.UserFeedback, error) {
	vote, err := model.ParseVote(string(f.Vote))
	if err != nil {
		return model.UserFeedback{}, err
	}
	f.Vote = vote

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	saved, err := s.store.AppendUserFeedback(sctx, f)
	if err != nil {
		return model.UserFeedback{}, fmt.Errorf("record user feedback: %w", err)
	}
	s.logger.Info(ctx, "user feedback recorded", logger.String("feedback", string(saved.Vote)))
	return saved, nil
}

// RecentUserFeedback returns up to n occupant votes, newest first.
func (s *Service) RecentUserFeedback(ctx context.Context, n int) ([]model.UserFeedback, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.RecentUserFeedback(sctx, n)
}

// RecentFeedback returns up to n comfort history records, newest first.
func (s *Service) RecentFeedback(ctx context.Context, n int) ([]model.FeedbackRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.RecentFeedback(sctx, n)
}
