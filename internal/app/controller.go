package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/okian/comfortloop/internal/adapters/repository"
	"github.com/okian/comfortloop/internal/domain/control"
	"github.com/okian/comfortloop/internal/domain/feedback"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/logger"
	"github.com/okian/comfortloop/pkg/metrics"
)

// OnNewEstimate classifies a predicted skin temperature and appends it to the
// comfort history with a best-effort device snapshot. It never fails: a device
// outage records nil readings and a store failure is logged.
func (s *Service) OnNewEstimate(ctx context.Context, predictedSkinTemp float64) types.Estimate {
	at := s.now()
	est := types.Estimate{PredictedSkinTemp: predictedSkinTemp, At: at}

	if math.IsNaN(predictedSkinTemp) || math.IsInf(predictedSkinTemp, 0) {
		s.control.Warn(ctx, "ignoring non-finite estimate")
		return est
	}

	label := s.thresholds.Classify(predictedSkinTemp)
	est.Classification = label.String()
	s.stats.estimates.Add(1)
	metrics.RecordEstimateClassified(label.String())

	rec := model.FeedbackRecord{
		Source:            model.SourceEstimate,
		Classification:    label,
		PredictedSkinTemp: model.Float(predictedSkinTemp),
		CreatedAt:         at,
	}
	if st, err := s.readDevice(ctx); err != nil {
		s.control.Warn(ctx, "estimate recorded without device snapshot", logger.Error(err))
	} else {
		rec.WithSnapshot(st.Snapshot())
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if _, err := s.store.AppendFeedback(sctx, rec); err != nil {
		s.control.Error(ctx, "failed to record estimate",
			logger.Float64("predicted_skin_temp", predictedSkinTemp),
			logger.String("classification", label.String()),
			logger.Error(err))
		return est
	}
	est.Recorded = true

	s.control.Debug(ctx, "estimate classified",
		logger.Float64("predicted_skin_temp", predictedSkinTemp),
		logger.String("classification", label.String()),
		logger.OptionalFloat64("current_temp", rec.CurrentTemp),
		logger.OptionalFloat64("target_temp", rec.TargetTemp))
	return est
}

// OnSchedulerTick runs one adjustment cycle. Triggers that arrive inside the
// debounce window, or while another cycle holds the gate, are no-ops.
// Only a cycle that reaches a decision restarts the window, measured from
// the trigger time rather than the end of the cycle.
func (s *Service) OnSchedulerTick(ctx context.Context) types.CycleReport {
	start := s.now()
	report := types.CycleReport{At: start}

	if err := s.gate.TryBegin(start); err != nil {
		report.Outcome = types.OutcomeDebounced
		if errors.Is(err, control.ErrInFlight) {
			report.Outcome = types.OutcomeInFlight
		}
		report.Detail = err.Error()
		metrics.RecordCycle(string(report.Outcome))
		s.control.Debug(ctx, "cycle skipped", logger.String("outcome", string(report.Outcome)))
		return report
	}

	s.stats.cycles.Add(1)
	decided := s.runCycle(ctx, &report)
	if decided {
		s.gate.Complete(start)
		s.stats.decided.Add(1)
		metrics.UpdateLastAdjustment(start)
		s.saveState(ctx, start)
	} else {
		s.gate.Abort()
	}

	metrics.RecordCycle(string(report.Outcome))
	metrics.RecordCycleDuration(s.now().Sub(start))
	return report
}

// runCycle fills report and returns true once a decision has been made.
func (s *Service) runCycle(ctx context.Context, report *types.CycleReport) bool {
	rng, err := s.ComfortRange(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		report.Outcome = types.OutcomeNoRange
		s.control.Info(ctx, "no comfort range configured, skipping cycle")
		return false
	case err != nil:
		report.Outcome, report.Detail = types.OutcomeStoreUnavailable, err.Error()
		s.control.Warn(ctx, "comfort range unreadable, skipping cycle", logger.Error(err))
		return false
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	history, err := s.store.RecentFeedback(sctx, s.historySize)
	cancel()
	if err != nil {
		report.Outcome, report.Detail = types.OutcomeStoreUnavailable, err.Error()
		s.control.Warn(ctx, "history unreadable, skipping cycle", logger.Error(err))
		return false
	}
	if len(history) < s.historySize {
		report.Outcome = types.OutcomeInsufficientHistory
		s.control.Info(ctx, "not enough history, skipping cycle",
			logger.Int("records", len(history)), logger.Int("required", s.historySize))
		return false
	}

	labels := make([]model.Classification, len(history))
	for i, rec := range history {
		labels[i] = rec.Classification
	}
	majority := feedback.Majority(labels)
	report.Majority = majority.String()

	st, err := s.readDevice(ctx)
	if err != nil {
		report.Outcome, report.Detail = types.OutcomeDeviceUnavailable, err.Error()
		s.control.Warn(ctx, "device unavailable, skipping cycle", logger.Error(err))
		return false
	}
	snap := st.Snapshot()

	dec := control.Decide(majority, snap, rng, s.params)
	s.logDecision(ctx, dec, snap, rng)

	recordedTarget := snap.TargetTemperature
	if dec.Command != nil {
		report.NewTarget = dec.Command
		if err := s.command(ctx, *dec.Command, s.unit); err != nil {
			s.control.Warn(ctx, "setpoint command failed, treating setpoint as unchanged",
				logger.Float64("setpoint", *dec.Command), logger.Error(err))
		} else {
			report.Commanded = true
			recordedTarget = dec.Command
		}
	}

	action := dec.ActionTaken()
	report.Outcome = types.OutcomeDecided
	report.ActionTaken = action
	for _, a := range dec.Actions {
		metrics.RecordAction(string(a))
	}

	rec := model.FeedbackRecord{
		Source:          model.SourceController,
		Classification:  majority,
		CurrentTemp:     snap.CurrentTemperature,
		CurrentHumidity: snap.CurrentHumidity,
		TargetTemp:      recordedTarget,
		TargetHumidity:  model.Float(s.params.TargetHumidity),
		ActionTaken:     &action,
		CreatedAt:       s.now(),
	}
	sctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if _, err := s.store.AppendFeedback(sctx, rec); err != nil {
		s.control.Error(ctx, "failed to record cycle", logger.String("action", action), logger.Error(err))
	} else {
		report.Recorded = true
	}
	return true
}

func (s *Service) logDecision(ctx context.Context, dec control.Decision, snap model.DeviceSnapshot, rng model.ComfortRange) {
	fields := []logger.Field{
		logger.String("majority", dec.Majority.String()),
		logger.String("action", dec.ActionTaken()),
		logger.OptionalFloat64("current_temp", snap.CurrentTemperature),
		logger.OptionalFloat64("target_temp", snap.TargetTemperature),
		logger.OptionalFloat64("humidity", snap.CurrentHumidity),
	}
	for _, a := range dec.Actions {
		if a == model.ActionTempAdjustmentCancelled {
			s.control.Warn(ctx, "setpoint outside comfort range, adjustment cancelled",
				append(fields, logger.Float64("min_temp", rng.MinTemp), logger.Float64("max_temp", rng.MaxTemp))...)
			return
		}
	}
	if dec.TemperatureUnknown {
		s.control.Warn(ctx, "device did not report temperatures, no setpoint change", fields...)
		return
	}
	s.control.Info(ctx, "cycle decided", fields...)
}

// saveState persists the debounce window. Failure is logged and swallowed.
func (s *Service) saveState(ctx context.Context, at time.Time) {
	if !s.persistState {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.SaveControllerState(sctx, model.ControllerState{LastAdjustmentTime: &at}); err != nil {
		s.control.Warn(ctx, "failed to persist controller state", logger.Error(err))
	}
}
