package feedback_test

import (
	"math/rand"
	"testing"

	"github.com/okian/comfortloop/internal/domain/feedback"
	"github.com/okian/comfortloop/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		Convey("When a temperature sits exactly on a threshold", func() {
			Convey("Then it should be GOOD", func() {
				So(feedback.Classify(34.5), ShouldEqual, model.Good)
				So(feedback.Classify(35.6), ShouldEqual, model.Good)
			})
		})

		Convey("When temperatures fall on either side of the band", func() {
			So(feedback.Classify(34.49), ShouldEqual, model.Cold)
			So(feedback.Classify(20), ShouldEqual, model.Cold)
			So(feedback.Classify(35.61), ShouldEqual, model.Hot)
			So(feedback.Classify(40), ShouldEqual, model.Hot)
			So(feedback.Classify(35.0), ShouldEqual, model.Good)
		})

		Convey("When sampling many temperatures", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 1000; i++ {
				v := 30 + rng.Float64()*10
				got := feedback.Classify(v)
				switch {
				case v < 34.5:
					So(got, ShouldEqual, model.Cold)
				case v > 35.6:
					So(got, ShouldEqual, model.Hot)
				default:
					So(got, ShouldEqual, model.Good)
				}
			}
		})
	})

	Convey("Given custom thresholds", t, func() {
		th := feedback.Thresholds{Cold: 33, Hot: 34}

		So(th.Classify(32.9), ShouldEqual, model.Cold)
		So(th.Classify(34.5), ShouldEqual, model.Hot)
		So(th.Classify(33.5), ShouldEqual, model.Good)
	})
}

func TestMajority(t *testing.T) {
	Convey("Given windows of three labels", t, func() {
		H, C, G := model.Hot, model.Cold, model.Good

		So(feedback.Majority([]model.Classification{H, H, G}), ShouldEqual, H)
		So(feedback.Majority([]model.Classification{H, C, G}), ShouldEqual, G)
		So(feedback.Majority([]model.Classification{G, G, G}), ShouldEqual, G)
		So(feedback.Majority([]model.Classification{C, C, H}), ShouldEqual, C)
		So(feedback.Majority([]model.Classification{C, H, C}), ShouldEqual, C)
		So(feedback.Majority([]model.Classification{G, H, H}), ShouldEqual, H)
		So(feedback.Majority([]model.Classification{C, G, H}), ShouldEqual, G)
	})

	Convey("Given windows of other sizes", t, func() {
		So(feedback.Majority(nil), ShouldEqual, model.Good)
		So(feedback.Majority([]model.Classification{model.Hot, model.Cold}), ShouldEqual, model.Good)
		So(feedback.Majority([]model.Classification{model.Cold, model.Cold, model.Hot, model.Hot, model.Cold}), ShouldEqual, model.Cold)
	})
}
