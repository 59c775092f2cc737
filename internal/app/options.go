package service

import (
	"time"

	"github.com/okian/comfortloop/internal/adapters/device"
	"github.com/okian/comfortloop/internal/adapters/inference"
	"github.com/okian/comfortloop/internal/adapters/repository"
	"github.com/okian/comfortloop/internal/config"
	"github.com/okian/comfortloop/internal/domain/control"
	"github.com/okian/comfortloop/internal/domain/dedupe"
	"github.com/okian/comfortloop/internal/domain/feedback"
	"github.com/okian/comfortloop/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithDevice sets the air conditioner.
func WithDevice(d device.Device) Option {
	return func(s *Service) {
		if d != nil {
			s.device = d
		}
	}
}

// WithPredictor sets the skin-temperature model used for health samples.
func WithPredictor(p inference.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithDeduper replaces the health sample deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source. Debounce decisions use it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithThresholds sets the skin-temperature classification band.
func WithThresholds(th feedback.Thresholds) Option {
	return func(s *Service) {
		if th.Cold < th.Hot {
			s.thresholds = th
		}
	}
}

// WithParams sets the adjustment step, convergence tolerance and target humidity.
func WithParams(p control.Params) Option {
	return func(s *Service) {
		if p.Step > 0 && p.ConvergenceTolerance >= 0 {
			s.params = p
		}
	}
}

// WithHistorySize sets how many recent records the majority is taken over.
func WithHistorySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historySize = n
		}
	}
}

// WithInterval sets the scheduler period.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithMinInterval sets the debounce window between decided cycles.
func WithMinInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.minInterval = d
		}
	}
}

// WithTimeouts bounds device, store and model calls. Zero keeps the default.
func WithTimeouts(deviceTimeout, storeTimeout, predictTimeout time.Duration) Option {
	return func(s *Service) {
		if deviceTimeout > 0 {
			s.deviceTimeout = deviceTimeout
		}
		if storeTimeout > 0 {
			s.storeTimeout = storeTimeout
		}
		if predictTimeout > 0 {
			s.predictTimeout = predictTimeout
		}
	}
}

// WithUnit sets the temperature unit sent with setpoint commands.
func WithUnit(unit string) Option {
	return func(s *Service) {
		if u, err := device.NormalizeUnit(unit); err == nil {
			s.unit = u
		}
	}
}

// WithSeedSetpoint commands the comfort range midpoint once when the service starts.
func WithSeedSetpoint(on bool) Option {
	return func(s *Service) {
		s.seedOnStart = on
	}
}

// WithPersistState stores the last adjustment time so restarts keep the debounce window.
func WithPersistState(on bool) Option {
	return func(s *Service) {
		s.persistState = on
	}
}

// OptionsFromConfig maps the tuning sections of cfg onto service options.
// Collaborators (store, device, predictor) are wired by the caller.
func OptionsFromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}
	return []Option{
		WithDedupeSize(cfg.DedupeSize),
		WithThresholds(feedback.Thresholds{Cold: cfg.Classifier.ColdThreshold, Hot: cfg.Classifier.HotThreshold}),
		WithParams(control.Params{
			Step:                 cfg.Control.Step,
			ConvergenceTolerance: cfg.Control.ConvergenceTolerance,
			TargetHumidity:       cfg.Control.TargetHumidity,
		}),
		WithHistorySize(cfg.Control.HistorySize),
		WithInterval(cfg.Control.Interval),
		WithMinInterval(cfg.Control.MinInterval),
		WithTimeouts(cfg.Timeouts.Device, cfg.Timeouts.Store, cfg.Timeouts.Predict),
		WithUnit(cfg.Device.Unit),
		WithSeedSetpoint(cfg.Control.SeedSetpointOnStart),
		WithPersistState(cfg.Control.PersistState),
	}
}
