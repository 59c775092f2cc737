// Package queue carries controller ticks from triggers to the cycle worker.
//
// A tick only asks for "run a cycle soon", so a full queue coalesces new
// ticks into the pending one instead of growing.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/comfortloop/pkg/metrics"
)

const defaultQueueCapacity = 1

// Tick requests one controller cycle.
type Tick struct {
	At     time.Time
	Reason string
}

// Tick reasons.
const (
	ReasonSchedule = "schedule"
	ReasonManual   = "manual"
	ReasonStartup  = "startup"
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue offers a tick. It returns false when the tick was coalesced into a
	// pending one or the queue is closed.
	Enqueue(ctx context.Context, t Tick) bool
	// Dequeue returns the channel the worker drains. It is closed by Close.
	Dequeue(ctx context.Context) <-chan Tick
	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	ticks    chan Tick
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.ticks = make(chan Tick, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a tick unless one is already pending.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Tick) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		return false
	}

	select {
	case q.ticks <- t:
		metrics.UpdateQueueSize(len(q.ticks))
		return true
	default:
		metrics.RecordTickCoalesced()
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Tick {
	return q.ticks
}

// Len returns the number of pending ticks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.ticks)
	metrics.UpdateQueueSize(size)
	return size
}

// Close stops accepting ticks. Pending ticks stay readable until drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.ticks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
