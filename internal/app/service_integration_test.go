package service_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/comfortloop/internal/adapters/device"
	"github.com/okian/comfortloop/internal/adapters/repository"
	service "github.com/okian/comfortloop/internal/app"
	"github.com/okian/comfortloop/internal/domain/model"
	"github.com/okian/comfortloop/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration_ConvergesOverHTTPDevice(t *testing.T) {
	Convey("Given a bolt store and a cloud device served over HTTP", t, func() {
		ctx := context.Background()
		clk := newClock()
		path := filepath.Join(t.TempDir(), "comfort.db")

		store, err := repository.Open(repository.DriverBolt, path, repository.WithClock(clk.Now))
		So(err, ShouldBeNil)

		sim := device.NewSimulated(21.0, 21.0, 45.0)
		srv := httptest.NewServer(sim.Handler("ac-1"))
		defer srv.Close()

		dev, err := device.NewHTTPDevice(device.HTTPConfig{BaseURL: srv.URL, DeviceID: "ac-1", Token: "secret"})
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(store),
			service.WithDevice(dev),
			service.WithClock(clk.Now),
		)

		// male, 30, BMI 22 resolves to [19.0, 21.0]
		rng, err := svc.ConfigureComfortRange(ctx, model.Profile{Gender: model.Male, Age: 30, BMI: 22})
		So(err, ShouldBeNil)
		So(rng.MinTemp, ShouldEqual, 19.0)

		for i := 0; i < 3; i++ {
			So(svc.OnNewEstimate(ctx, 36.2).Recorded, ShouldBeTrue)
		}

		Convey("When the room stays hot over successive windows", func() {
			var actions []string
			for i := 0; i < 5; i++ {
				r := svc.OnSchedulerTick(ctx)
				So(r.Outcome, ShouldEqual, types.OutcomeDecided)
				actions = append(actions, r.ActionTaken)

				// a tick inside the window never reaches the device
				So(svc.OnSchedulerTick(ctx).Outcome, ShouldEqual, types.OutcomeDebounced)

				sim.Drift(1.0)
				clk.Advance(30 * time.Minute)
			}

			Convey("Then the setpoint walks down to the range floor and stops", func() {
				So(actions, ShouldResemble, []string{
					"temp_down", "temp_down", "temp_down", "temp_down", "temp_adjustment_cancelled",
				})
				So(sim.Commands(), ShouldEqual, 4)

				st, err := svc.DeviceState(ctx)
				So(err, ShouldBeNil)
				So(*st.TargetTemperature, ShouldEqual, 19.0)

				recs, err := svc.RecentFeedback(ctx, 1)
				So(err, ShouldBeNil)
				So(*recs[0].ActionTaken, ShouldEqual, "temp_adjustment_cancelled")
				So(*recs[0].TargetTemp, ShouldEqual, 19.0)
			})

			Convey("And a restarted service keeps the debounce window", func() {
				clk.Advance(-20 * time.Minute)
				So(store.Close(), ShouldBeNil)

				reopened, err := repository.Open(repository.DriverBolt, path, repository.WithClock(clk.Now))
				So(err, ShouldBeNil)
				defer reopened.Close()

				restarted := service.New(
					service.WithStore(reopened),
					service.WithDevice(dev),
					service.WithClock(clk.Now),
				)
				So(restarted.RestoreState(ctx), ShouldBeNil)
				So(restarted.OnSchedulerTick(ctx).Outcome, ShouldEqual, types.OutcomeDebounced)
			})
		})

		Reset(func() {
			_ = store.Close()
		})
	})
}
