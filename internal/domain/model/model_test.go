package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	model "github.com/okian/comfortloop/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestClassification(t *testing.T) {
	convey.Convey("Given the classification enum", t, func() {
		convey.Convey("When parsing names and codes", func() {
			cases := map[string]model.Classification{
				"HOT": model.Hot, "h": model.Hot,
				"COLD": model.Cold, "c": model.Cold,
				"good": model.Good, "G": model.Good,
			}
			for in, want := range cases {
				got, err := model.ParseClassification(in)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("When parsing an unknown label", func() {
			_, err := model.ParseClassification("warm")

			convey.Convey("Then it should fail", func() {
				convey.So(errors.Is(err, model.ErrUnknownClassification), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When round-tripping through JSON", func() {
			b, err := json.Marshal(struct {
				C model.Classification `json:"c"`
			}{model.Cold})
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual, `{"c":"COLD"}`)

			var out struct {
				C model.Classification `json:"c"`
			}
			convey.So(json.Unmarshal([]byte(`{"c":"H"}`), &out), convey.ShouldBeNil)
			convey.So(out.C, convey.ShouldEqual, model.Hot)
		})

		convey.Convey("When marshalling the zero value", func() {
			_, err := json.Marshal(model.ClassificationUnknown)

			convey.Convey("Then it should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestJoinActions(t *testing.T) {
	convey.Convey("Given controller actions", t, func() {
		convey.So(model.JoinActions(nil), convey.ShouldEqual, "none")
		convey.So(model.JoinActions([]model.Action{model.ActionTempDown}), convey.ShouldEqual, "temp_down")
		convey.So(model.JoinActions([]model.Action{model.ActionHumidityCheck, model.ActionTempUp}),
			convey.ShouldEqual, "humidity_check, temp_up")
	})
}

func TestComfortRange(t *testing.T) {
	convey.Convey("Given comfort ranges", t, func() {
		convey.So(model.ComfortRange{MinTemp: 19, MaxTemp: 21}.Validate(), convey.ShouldBeNil)

		for _, r := range []model.ComfortRange{
			{MinTemp: 21, MaxTemp: 21},
			{MinTemp: 22, MaxTemp: 21},
			{MinTemp: math.NaN(), MaxTemp: 21},
			{MinTemp: 19, MaxTemp: math.Inf(1)},
		} {
			convey.So(errors.Is(r.Validate(), model.ErrInvalidComfortRange), convey.ShouldBeTrue)
		}

		r := model.ComfortRange{MinTemp: 19, MaxTemp: 21}
		convey.So(r.Contains(19), convey.ShouldBeTrue)
		convey.So(r.Contains(21), convey.ShouldBeTrue)
		convey.So(r.Contains(18.5), convey.ShouldBeFalse)
		convey.So(r.Midpoint(), convey.ShouldEqual, 20)
	})
}

func TestProfileAndVotes(t *testing.T) {
	convey.Convey("Given occupant input", t, func() {
		g, err := model.ParseGender("0")
		convey.So(err, convey.ShouldBeNil)
		convey.So(g, convey.ShouldEqual, model.Female)

		g, err = model.ParseGender("Male")
		convey.So(err, convey.ShouldBeNil)
		convey.So(g, convey.ShouldEqual, model.Male)

		_, err = model.ParseGender("x")
		convey.So(errors.Is(err, model.ErrInvalidProfile), convey.ShouldBeTrue)

		convey.So(model.Profile{Gender: model.Female, Age: 65, BMI: 22}.Validate(), convey.ShouldBeNil)
		convey.So(model.Profile{Gender: "X", Age: 65, BMI: 22}.Validate(), convey.ShouldNotBeNil)
		convey.So(model.Profile{Gender: model.Male, Age: -1, BMI: 22}.Validate(), convey.ShouldNotBeNil)
		convey.So(model.Profile{Gender: model.Male, Age: 30, BMI: 0}.Validate(), convey.ShouldNotBeNil)

		v, err := model.ParseVote(" Hot ")
		convey.So(err, convey.ShouldBeNil)
		convey.So(v, convey.ShouldEqual, model.VoteHot)
		_, err = model.ParseVote("meh")
		convey.So(errors.Is(err, model.ErrUnknownVote), convey.ShouldBeTrue)
	})
}

func TestFeedbackRecordSnapshot(t *testing.T) {
	convey.Convey("Given a record and a partial device snapshot", t, func() {
		rec := model.FeedbackRecord{Classification: model.Hot}
		rec.WithSnapshot(model.DeviceSnapshot{CurrentTemperature: model.Float(24.5)})

		convey.Convey("Then reported fields are copied and missing ones stay nil", func() {
			convey.So(*rec.CurrentTemp, convey.ShouldEqual, 24.5)
			convey.So(rec.CurrentHumidity, convey.ShouldBeNil)
			convey.So(rec.TargetTemp, convey.ShouldBeNil)
		})
	})
}
