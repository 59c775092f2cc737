package control

import (
	"sync"
	"time"
)

// Gate is the IDLE/READY debounce between decided cycles. TryBegin checks eligibility and
// claims the cycle in one step so overlapping triggers cannot both run. A claimed cycle
// ends with Complete (a decision was made, the window restarts) or Abort (no-op, the
// window is left untouched).
type Gate struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        *time.Time
	inFlight    bool
}

// GateState is a read-only view of the gate.
type GateState struct {
	LastAdjustmentTime *time.Time `json:"last_adjustment_time"`
	NextEligibleAt     *time.Time `json:"next_eligible_at"`
	InFlight           bool       `json:"in_flight"`
}

// NewGate creates a gate. last is the restored last adjustment time or nil for "never run".
func NewGate(minInterval time.Duration, last *time.Time) *Gate {
	g := &Gate{minInterval: minInterval}
	if last != nil {
		t := *last
		g.last = &t
	}
	return g
}

// TryBegin claims the next cycle if the gate is READY at now.
func (g *Gate) TryBegin(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return ErrInFlight
	}
	if g.last != nil && now.Sub(*g.last) < g.minInterval {
		return ErrDebounced
	}
	g.inFlight = true
	return nil
}

// Complete releases the claim and restarts the debounce window at now.
func (g *Gate) Complete(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := now
	g.last = &t
	g.inFlight = false
}

// Restore replaces the last adjustment time, e.g. with a persisted one.
// A nil last resets the gate to "never run". An in-flight claim is kept.
func (g *Gate) Restore(last *time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last = nil
	if last != nil {
		t := *last
		g.last = &t
	}
}

// Abort releases the claim without consuming the debounce window.
func (g *Gate) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inFlight = false
}

// State returns a snapshot of the gate.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := GateState{InFlight: g.inFlight}
	if g.last != nil {
		last := *g.last
		next := last.Add(g.minInterval)
		s.LastAdjustmentTime = &last
		s.NextEligibleAt = &next
	}
	return s
}
