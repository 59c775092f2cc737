package inference_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/comfortloop/internal/adapters/inference"
	"github.com/okian/comfortloop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFeatureVector(t *testing.T) {
	Convey("Given a resting sample", t, func() {
		f := inference.Features{HeartRate: 80, HRV: 39, OxygenSaturation: 97, BMI: 25, Age: 40, Gender: model.Male}
		v := f.Vector()

		Convey("Then raw and derived features are present", func() {
			So(v[inference.FeatureHeartRate], ShouldEqual, 80)
			So(v[inference.FeatureGenderMale], ShouldEqual, 1)
			So(v[inference.FeatureHRVHeartRateRatio], ShouldAlmostEqual, 39.0/80.0)
			So(v[inference.FeatureBMIHeartRate], ShouldEqual, 2000)
			So(v[inference.FeatureAgeBMI], ShouldEqual, 1000)
			So(v[inference.FeatureAgeHRVRatio], ShouldEqual, 1)
		})

		Convey("When heart rate and HRV are zero", func() {
			f.HeartRate, f.HRV, f.Gender = 0, 0, model.Female
			v := f.Vector()

			Convey("Then the ratios are zero instead of dividing by zero", func() {
				So(v[inference.FeatureHRVHeartRateRatio], ShouldEqual, 0)
				So(v[inference.FeatureAgeHRVRatio], ShouldEqual, 0)
				So(v[inference.FeatureGenderMale], ShouldEqual, 0)
			})
		})
	})
}

func TestLinearModel(t *testing.T) {
	Convey("Given a linear model", t, func() {
		ctx := context.Background()
		m := &inference.LinearModel{
			Coefficients: map[string]float64{
				inference.FeatureHeartRate:  0.01,
				inference.FeatureGenderMale: -0.5,
				"unused_feature":            100,
			},
			Intercept: 34,
		}

		Convey("When predicting", func() {
			got, err := m.Predict(ctx, inference.Features{HeartRate: 70, Gender: model.Male})

			Convey("Then it is intercept plus weighted features", func() {
				So(err, ShouldBeNil)
				So(got, ShouldAlmostEqual, 34.2)
			})
		})

		Convey("When the features are invalid", func() {
			_, err := m.Predict(ctx, inference.Features{HeartRate: math.NaN()})
			So(errors.Is(err, inference.ErrInvalidFeatures), ShouldBeTrue)

			_, err = m.Predict(ctx, inference.Features{HRV: -1})
			So(errors.Is(err, inference.ErrInvalidFeatures), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := m.Predict(cctx, inference.Features{HeartRate: 70})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("When the model is empty", func() {
			var empty *inference.LinearModel
			_, err := empty.Predict(ctx, inference.Features{})
			So(errors.Is(err, inference.ErrModelNotLoaded), ShouldBeTrue)
		})
	})
}

func TestLoadLinearModel(t *testing.T) {
	Convey("Given a model directory", t, func() {
		dir := t.TempDir()

		Convey("When the sample model is written and loaded", func() {
			path := filepath.Join(dir, "models", "model.json")
			So(inference.WriteSampleModel(path), ShouldBeNil)
			m, err := inference.LoadLinearModel(path)

			Convey("Then typical resting vitals predict a normal skin temperature", func() {
				So(err, ShouldBeNil)
				So(m.Name(), ShouldEqual, "linear-sample")
				got, err := m.Predict(context.Background(), inference.Features{
					HeartRate: 70, HRV: 50, OxygenSaturation: 97, BMI: 22, Age: 30, Gender: model.Female,
				})
				So(err, ShouldBeNil)
				So(got, ShouldBeBetweenOrEqual, 34.5, 35.6)
			})
		})

		Convey("When the file is missing", func() {
			_, err := inference.LoadLinearModel(filepath.Join(dir, "missing.json"))
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("When the file is not a model", func() {
			path := filepath.Join(dir, "bad.json")
			So(os.WriteFile(path, []byte(`{"intercept": 1}`), 0o644), ShouldBeNil)
			_, err := inference.LoadLinearModel(path)
			So(errors.Is(err, inference.ErrInvalidModel), ShouldBeTrue)

			So(os.WriteFile(path, []byte(`not json`), 0o644), ShouldBeNil)
			_, err = inference.LoadLinearModel(path)
			So(errors.Is(err, inference.ErrInvalidModel), ShouldBeTrue)
		})
	})
}
