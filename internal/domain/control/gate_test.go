package control_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/comfortloop/internal/domain/control"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGate(t *testing.T) {
	Convey("Given a gate that has never run", t, func() {
		start := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
		g := control.NewGate(30*time.Minute, nil)

		Convey("When the first cycle begins", func() {
			So(g.TryBegin(start), ShouldBeNil)

			Convey("Then a second trigger is rejected while it runs", func() {
				So(errors.Is(g.TryBegin(start), control.ErrInFlight), ShouldBeTrue)
				So(g.State().InFlight, ShouldBeTrue)
			})

			Convey("Then an aborted cycle leaves the gate READY", func() {
				g.Abort()
				So(g.TryBegin(start.Add(time.Minute)), ShouldBeNil)
				So(g.State().LastAdjustmentTime, ShouldBeNil)
			})

			Convey("Then a completed cycle debounces the next 30 minutes", func() {
				g.Complete(start)

				So(errors.Is(g.TryBegin(start.Add(29*time.Minute)), control.ErrDebounced), ShouldBeTrue)
				So(g.TryBegin(start.Add(30*time.Minute)), ShouldBeNil)

				st := g.State()
				So(*st.LastAdjustmentTime, ShouldEqual, start)
				So(*st.NextEligibleAt, ShouldEqual, start.Add(30*time.Minute))
			})
		})
	})

	Convey("Given a gate restored from a recent adjustment", t, func() {
		last := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
		g := control.NewGate(30*time.Minute, &last)

		So(errors.Is(g.TryBegin(last.Add(2*time.Minute)), control.ErrDebounced), ShouldBeTrue)

		Convey("When it is restored to a later adjustment", func() {
			later := last.Add(20 * time.Minute)
			g.Restore(&later)

			So(errors.Is(g.TryBegin(last.Add(30*time.Minute)), control.ErrDebounced), ShouldBeTrue)
			So(*g.State().LastAdjustmentTime, ShouldEqual, later)
		})

		Convey("When it is restored to never run", func() {
			g.Restore(nil)

			So(g.State().LastAdjustmentTime, ShouldBeNil)
			So(g.TryBegin(last.Add(time.Minute)), ShouldBeNil)
		})
	})

	Convey("Given many concurrent triggers", t, func() {
		g := control.NewGate(30*time.Minute, nil)
		now := time.Now()
		var wins atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.TryBegin(now) == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		So(wins.Load(), ShouldEqual, 1)
	})
}
