package comfort_test

import (
	"testing"

	"github.com/okian/comfortloop/internal/domain/comfort"
	"github.com/okian/comfortloop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given occupant profiles", t, func() {
		cases := []struct {
			name     string
			profile  model.Profile
			min, max float64
		}{
			{"baseline male", model.Profile{Gender: model.Male, Age: 30, BMI: 22}, 19.0, 21.0},
			{"female in her sixties", model.Profile{Gender: model.Female, Age: 65, BMI: 22}, 20.5, 22.5},
			{"age 60 is the lower edge", model.Profile{Gender: model.Male, Age: 60, BMI: 22}, 19.5, 21.5},
			{"age 70 moves to the next band", model.Profile{Gender: model.Male, Age: 70, BMI: 22}, 20.0, 22.0},
			{"age 80 is still inside", model.Profile{Gender: model.Male, Age: 80, BMI: 22}, 20.0, 22.0},
			{"age 81 gets nothing", model.Profile{Gender: model.Male, Age: 81, BMI: 22}, 19.0, 21.0},
			{"underweight", model.Profile{Gender: model.Male, Age: 30, BMI: 18.4}, 20.0, 22.0},
			{"bmi 18.5 is normal", model.Profile{Gender: model.Male, Age: 30, BMI: 18.5}, 19.0, 21.0},
			{"bmi 25 is overweight", model.Profile{Gender: model.Male, Age: 30, BMI: 25}, 18.5, 20.5},
			{"bmi 30 is obese", model.Profile{Gender: model.Male, Age: 30, BMI: 30}, 18.0, 20.0},
			{"everything stacks", model.Profile{Gender: model.Female, Age: 75, BMI: 17}, 22.0, 24.0},
		}

		for _, tc := range cases {
			Convey("When resolving "+tc.name, func() {
				r := comfort.Resolve(tc.profile)

				Convey("Then the band should match and stay 2 degrees wide", func() {
					So(r.MinTemp, ShouldEqual, tc.min)
					So(r.MaxTemp, ShouldEqual, tc.max)
					So(r.MaxTemp-r.MinTemp, ShouldAlmostEqual, 2.0, 1e-9)
					So(r.Validate(), ShouldBeNil)
				})
			})
		}
	})
}
