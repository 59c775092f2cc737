package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/comfortloop/internal/adapters/inference"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/logger"
	"github.com/okian/comfortloop/pkg/metrics"
)

// SubmitHealthData ingests one wearable sample: dedupe by sample id, make sure a
// comfort range exists, predict the skin temperature and classify it.
func (s *Service) SubmitHealthData(ctx context.Context, in types.HealthSample) (types.HealthResult, error) {
	if in.HeartRate == nil || in.HRV == nil || in.OxygenSaturation == nil {
		return types.HealthResult{}, fmt.Errorf("%w: heartRate, HRV and oxygenSaturation are required", ErrInvalidSample)
	}

	if in.SampleID != "" && s.deduper.SeenAndRecord(ctx, in.SampleID) {
		s.stats.duplicates.Add(1)
		metrics.RecordEstimateDuplicate()
		s.logger.Debug(ctx, "duplicate health sample", logger.String("sample_id", in.SampleID))
		return types.HealthResult{Status: types.SampleDuplicate}, nil
	}

	features := inference.Features{
		HeartRate:        *in.HeartRate,
		HRV:              *in.HRV,
		OxygenSaturation: *in.OxygenSaturation,
		BMI:              valueOr(in.BMI, 0),
		Age:              valueOr(in.Age, 0),
		Gender:           model.Female,
	}
	if valueOr(in.Gender, 0) != 0 {
		features.Gender = model.Male
	}

	result := types.HealthResult{Status: types.SampleAccepted}
	if in.BMI != nil && in.Age != nil && in.Gender != nil {
		profile := model.Profile{Gender: features.Gender, Age: features.Age, BMI: features.BMI}
		rng, err := s.EnsureComfortRange(ctx, profile)
		if err != nil {
			s.logger.Warn(ctx, "comfort range not available", logger.Error(err))
		} else {
			result.ComfortRange = &rng
		}
	}

	temp, err := s.predict(ctx, features)
	if err != nil {
		if in.SampleID != "" {
			s.deduper.Unrecord(ctx, in.SampleID)
		}
		return types.HealthResult{}, err
	}

	est := s.OnNewEstimate(ctx, temp)
	result.PredictedSkinTemp = model.Float(temp)
	result.Classification = est.Classification
	result.Recorded = est.Recorded
	return result, nil
}

func (s *Service) predict(ctx context.Context, f inference.Features) (float64, error) {
	if s.predictor == nil {
		metrics.RecordPredictionError()
		return 0, fmt.Errorf("%w: %w", ErrPredictionFailed, inference.ErrModelNotLoaded)
	}
	pctx, cancel := context.WithTimeout(ctx, s.predictTimeout)
	defer cancel()

	temp, err := s.predictor.Predict(pctx, f)
	if err != nil {
		metrics.RecordPredictionError()
		s.logger.Error(ctx, "prediction failed", logger.Error(err))
		if errors.Is(err, inference.ErrInvalidFeatures) {
			return 0, fmt.Errorf("%w: %w", ErrInvalidSample, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	return temp, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
