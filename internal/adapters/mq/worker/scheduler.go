package worker

import (
	"context"
	"time"

	"github.com/okian/comfortloop/internal/adapters/mq/queue"
	"github.com/okian/comfortloop/pkg/logger"
)

// Enqueuer accepts ticks.
type Enqueuer interface {
	Enqueue(ctx context.Context, t queue.Tick) bool
}

// Scheduler enqueues a tick every interval.
type Scheduler struct {
	interval  time.Duration
	queue     Enqueuer
	immediate bool
	now       func() time.Time
	logger    logger.Logger
}

// NewScheduler creates a scheduler. A non-positive interval falls back to 30 minutes.
func NewScheduler(interval time.Duration, q Enqueuer, opts ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	s := &Scheduler{
		interval: interval,
		queue:    q,
		now:      time.Now,
		logger:   logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.immediate {
		s.offer(ctx, queue.ReasonStartup)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.offer(ctx, queue.ReasonSchedule)
		}
	}
}

func (s *Scheduler) offer(ctx context.Context, reason string) {
	if !s.queue.Enqueue(ctx, queue.Tick{At: s.now(), Reason: reason}) {
		s.logger.Debug(ctx, "tick coalesced", logger.String("reason", reason))
	}
}
