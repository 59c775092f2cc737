package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/comfortloop/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When a sample id is new", func() {
			seen := d.SeenAndRecord(ctx, "sample-1")

			Convey("Then it should return false and record it", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the same id arrives again", func() {
				So(d.SeenAndRecord(ctx, "sample-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And it is unrecorded", func() {
				d.Unrecord(ctx, "sample-1")
				d.Unrecord(ctx, "missing")

				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "sample-1"), ShouldBeFalse)
			})
		})

		Convey("When the deduper is at capacity", func() {
			for _, id := range []string{"a", "b", "c"} {
				d.SeenAndRecord(ctx, id)
			}
			d.SeenAndRecord(ctx, "d")

			Convey("Then the oldest id should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("s-%d", i))
		}

		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "s-0"), ShouldBeTrue)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by concurrent uploads", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "same-sample") {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		So(fresh, ShouldEqual, 1)
	})
}
