// Package service wires the comfort controller to its store, device and model,
// and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/comfortloop/internal/adapters/device"
	"github.com/okian/comfortloop/internal/adapters/inference"
	tickqueue "github.com/okian/comfortloop/internal/adapters/mq/queue"
	"github.com/okian/comfortloop/internal/adapters/mq/worker"
	"github.com/okian/comfortloop/internal/adapters/repository"
	"github.com/okian/comfortloop/internal/domain/control"
	"github.com/okian/comfortloop/internal/domain/dedupe"
	"github.com/okian/comfortloop/internal/domain/feedback"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/logger"
	"github.com/okian/comfortloop/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultInterval       = 30 * time.Minute
	defaultMinInterval    = 30 * time.Minute
	defaultHistorySize    = 3
	defaultDedupeSize     = 10000
	defaultDeviceTimeout  = 10 * time.Second
	defaultStoreTimeout   = 5 * time.Second
	defaultPredictTimeout = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
)

// Service is the comfort controller process: estimate intake, the debounced
// adjustment cycle and the management operations around them.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store     repository.Store
	device    device.Device
	predictor inference.Predictor
	deduper   dedupe.Deduper
	gate      *control.Gate

	// Configuration
	thresholds     feedback.Thresholds
	params         control.Params
	historySize    int
	interval       time.Duration
	minInterval    time.Duration
	dedupeSize     int
	deviceTimeout  time.Duration
	storeTimeout   time.Duration
	predictTimeout time.Duration
	unit           string
	seedOnStart    bool
	persistState   bool
	now            func() time.Time

	// Scheduling
	queue  *tickqueue.InMemoryQueue
	worker *worker.CycleWorker
	cancel context.CancelFunc

	// State
	started bool
	stats   counters

	logger  logger.Logger
	control logger.Logger
}

type counters struct {
	estimates  atomic.Int64
	duplicates atomic.Int64
	cycles     atomic.Int64
	decided    atomic.Int64
	commands   atomic.Int64
}

// New constructs a Service. Without WithStore it keeps history in memory; without
// WithDevice every device step takes its unavailable path.
func New(opts ...Option) *Service {
	s := &Service{
		thresholds:     feedback.DefaultThresholds(),
		params:         control.DefaultParams(),
		historySize:    defaultHistorySize,
		interval:       defaultInterval,
		minInterval:    defaultMinInterval,
		dedupeSize:     defaultDedupeSize,
		deviceTimeout:  defaultDeviceTimeout,
		storeTimeout:   defaultStoreTimeout,
		predictTimeout: defaultPredictTimeout,
		unit:           device.UnitCelsius,
		seedOnStart:    true,
		persistState:   true,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.control = s.logger.Named("controller")
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithClock(s.now))
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.gate = control.NewGate(s.minInterval, nil)
	return s
}

// RestoreState loads the persisted last adjustment time into the debounce gate.
// It is a no-op when state persistence is off.
func (s *Service) RestoreState(ctx context.Context) error {
	if !s.persistState {
		return nil
	}
	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	st, err := s.store.ControllerState(sctx)
	if err != nil {
		return fmt.Errorf("restore controller state: %w", err)
	}
	s.gate.Restore(st.LastAdjustmentTime)
	if st.LastAdjustmentTime != nil {
		metrics.UpdateLastAdjustment(*st.LastAdjustmentTime)
		s.control.Info(ctx, "restored debounce window",
			logger.Time("last_adjustment_time", *st.LastAdjustmentTime))
	}
	return nil
}

// Start restores state, seeds the setpoint and starts the scheduler and cycle worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting comfort service...")

	if err := s.RestoreState(ctx); err != nil {
		// A missing state only costs one early cycle; keep going.
		s.logger.Warn(ctx, "controller state not restored", logger.Error(err))
	}
	if rng, err := s.ComfortRange(ctx); err == nil {
		metrics.UpdateComfortRange(rng.MinTemp, rng.MaxTemp)
		if s.seedOnStart {
			s.seedSetpoint(ctx, rng)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = tickqueue.NewInMemoryQueue()
	s.worker = worker.NewCycleWorker(s.queue, s, worker.WithName("cycle"), worker.WithLogger(s.logger))
	scheduler := worker.NewScheduler(s.interval, s.queue,
		worker.WithSchedulerClock(s.now),
		worker.WithSchedulerLogger(s.logger.Named("scheduler")),
	)
	go s.worker.Run(runCtx)
	go scheduler.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "comfort service started",
		logger.Duration("interval", s.interval),
		logger.Duration("min_interval", s.minInterval),
		logger.Int("history_size", s.historySize),
		logger.String("store", s.store.Name()),
		logger.String("device", s.deviceName()),
	)
	return nil
}

// Stop stops the scheduler, lets an in-flight cycle finish and waits for the worker.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping comfort service...")

	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err := s.worker.Shutdown(shutdownCtx)
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "comfort service stopped")
	return err
}

// RequestCycle asks the worker for a cycle. It returns false when a cycle is already pending.
func (s *Service) RequestCycle(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false, ErrNotStarted
	}
	return s.queue.Enqueue(ctx, tickqueue.Tick{At: s.now(), Reason: tickqueue.ReasonManual}), nil
}

// ControlState reports the debounce gate.
func (s *Service) ControlState() control.GateState {
	return s.gate.State()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		EstimatesClassified: s.stats.estimates.Load(),
		EstimatesDuplicate:  s.stats.duplicates.Load(),
		CyclesRun:           s.stats.cycles.Load(),
		CyclesDecided:       s.stats.decided.Load(),
		CommandsIssued:      s.stats.commands.Load(),
		LastAdjustmentTime:  s.gate.State().LastAdjustmentTime,
		Running:             s.started,
	}
	if s.started {
		st.QueueDepth = s.queue.Len(ctx)
	}
	return st
}

// Health checks every collaborator.
func (s *Service) Health(ctx context.Context) map[string]types.ComponentHealth {
	out := make(map[string]types.ComponentHealth, 3)

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := s.store.Ping(sctx); err != nil {
		out["store"] = types.ComponentHealth{Status: types.StatusUnavailable, Detail: err.Error()}
	} else {
		out["store"] = types.ComponentHealth{Status: types.StatusOK, Detail: s.store.Name()}
	}

	if _, err := s.readDevice(ctx); err != nil {
		status := types.StatusUnavailable
		if errors.Is(err, ErrNoDevice) {
			status = types.StatusDisabled
		}
		out["device"] = types.ComponentHealth{Status: status, Detail: err.Error()}
	} else {
		out["device"] = types.ComponentHealth{Status: types.StatusOK, Detail: s.deviceName()}
	}

	if s.predictor == nil {
		out["model"] = types.ComponentHealth{Status: types.StatusDisabled, Detail: inference.ErrModelNotLoaded.Error()}
	} else {
		out["model"] = types.ComponentHealth{Status: types.StatusOK, Detail: s.predictor.Name()}
	}
	return out
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

func (s *Service) deviceName() string {
	if s.device == nil {
		return "none"
	}
	return s.device.Name()
}

// readDevice reads the device state under the device timeout.
func (s *Service) readDevice(ctx context.Context) (device.State, error) {
	if s.device == nil {
		return device.State{}, ErrNoDevice
	}
	dctx, cancel := context.WithTimeout(ctx, s.deviceTimeout)
	defer cancel()

	st, err := s.device.ReadState(dctx)
	if err != nil {
		metrics.RecordDeviceError("read")
		return device.State{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	return st, nil
}

// command sends a setpoint under the device timeout.
func (s *Service) command(ctx context.Context, value float64, unit string) error {
	if s.device == nil {
		return ErrNoDevice
	}
	dctx, cancel := context.WithTimeout(ctx, s.deviceTimeout)
	defer cancel()

	if err := s.device.SetTargetTemperature(dctx, value, unit); err != nil {
		metrics.RecordDeviceError("set")
		if errors.Is(err, device.ErrRejected) || errors.Is(err, device.ErrInvalidUnit) {
			return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s.stats.commands.Add(1)
	metrics.RecordSetpointCommand()
	metrics.UpdateSetpoint(value)
	return nil
}

// seedSetpoint commands the comfort range midpoint. Failure is only logged.
func (s *Service) seedSetpoint(ctx context.Context, rng model.ComfortRange) {
	mid := rng.Midpoint()
	if err := s.command(ctx, mid, s.unit); err != nil {
		s.control.Warn(ctx, "initial setpoint not applied",
			logger.Float64("setpoint", mid), logger.Error(err))
		return
	}
	s.control.Info(ctx, "initial setpoint applied", logger.Float64("setpoint", mid))
}
