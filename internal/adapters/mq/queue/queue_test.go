package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !q.Enqueue(ctx, Tick{At: at, Reason: ReasonManual}) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	tick := <-q.Dequeue(ctx)
	if tick.Reason != ReasonManual || !tick.At.Equal(at) {
		t.Errorf("unexpected tick %+v", tick)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Coalesces(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if !q.Enqueue(ctx, Tick{Reason: ReasonSchedule}) {
		t.Fatal("expected first tick to be accepted")
	}
	for i := 0; i < 5; i++ {
		if q.Enqueue(ctx, Tick{Reason: ReasonManual}) {
			t.Fatal("expected extra ticks to be coalesced")
		}
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}
	if tick := <-q.Dequeue(ctx); tick.Reason != ReasonSchedule {
		t.Errorf("expected the first tick to survive, got %q", tick.Reason)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2), WithCapacity(0))
	ctx := context.Background()

	if !q.Enqueue(ctx, Tick{}) || !q.Enqueue(ctx, Tick{}) {
		t.Error("expected two ticks to fit")
	}
	if q.Enqueue(ctx, Tick{}) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if q.Enqueue(ctx, Tick{Reason: ReasonManual}) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("expected exactly one accepted tick without a consumer, got %d", accepted)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, Tick{}) {
		t.Error("expected enqueue to fail on a cancelled context")
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if !q.Enqueue(ctx, Tick{Reason: ReasonStartup}) {
		t.Error("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, Tick{}) {
		t.Error("expected enqueue to fail after closing")
	}

	ch := q.Dequeue(ctx)
	if tick, ok := <-ch; !ok || tick.Reason != ReasonStartup {
		t.Errorf("expected pending tick to drain after close, got %+v ok=%v", tick, ok)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected dequeue channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("expected dequeue channel to be closed within timeout")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
