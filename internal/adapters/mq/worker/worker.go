// Package worker runs controller cycles off the tick queue.
//
// A single CycleWorker is the only consumer, so cycles never overlap through this
// path. Manual triggers that bypass the queue still meet the controller's own
// debounce gate.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/comfortloop/internal/adapters/mq/queue"
	"github.com/okian/comfortloop/internal/domain/types"
	"github.com/okian/comfortloop/pkg/logger"
)

// Cycler runs one controller cycle.
type Cycler interface {
	OnSchedulerTick(ctx context.Context) types.CycleReport
}

// Queue defines how the worker receives ticks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Tick
}

// Worker consumes ticks until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or Shutdown is called.
	Run(ctx context.Context)
	// Shutdown stops the worker after any in-flight cycle completes.
	Shutdown(ctx context.Context) error
}

// CycleWorker implements Worker for controller ticks.
type CycleWorker struct {
	queue  Queue
	cycler Cycler
	name   string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewCycleWorker creates a worker with configuration options.
func NewCycleWorker(q Queue, c Cycler, opts ...Option) *CycleWorker {
	w := &CycleWorker{
		queue:    q,
		cycler:   c,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *CycleWorker) Run(ctx context.Context) {
	defer close(w.done)

	ticks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			w.process(ctx, tick)
		}
	}
}

// process runs one cycle on a context detached from cancellation, so a shutdown
// signal never interrupts a cycle between its device command and its record.
func (w *CycleWorker) process(ctx context.Context, tick queue.Tick) {
	start := time.Now()
	report := w.cycler.OnSchedulerTick(context.WithoutCancel(ctx))

	fields := []logger.Field{
		logger.String("reason", tick.Reason),
		logger.String("outcome", string(report.Outcome)),
		logger.Duration("elapsed", time.Since(start)),
	}
	if report.ActionTaken != "" {
		fields = append(fields, logger.String("action", report.ActionTaken))
	}
	if report.Outcome == types.OutcomeDecided {
		w.logger.Info(ctx, "cycle finished", fields...)
		return
	}
	w.logger.Debug(ctx, "cycle skipped", fields...)
}

// Shutdown gracefully stops the worker.
func (w *CycleWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *CycleWorker) Done() <-chan struct{} {
	return w.done
}
