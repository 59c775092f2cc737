package worker

import (
	"time"

	"github.com/okian/comfortloop/pkg/logger"
)

// Option applies a configuration option to the CycleWorker.
type Option func(*CycleWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *CycleWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *CycleWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithImmediateTick makes the scheduler enqueue one tick as soon as it starts.
func WithImmediateTick(on bool) SchedulerOption {
	return func(s *Scheduler) {
		s.immediate = on
	}
}

// WithSchedulerClock overrides the time source stamped on ticks.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
