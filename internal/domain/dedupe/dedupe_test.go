package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	dedupe "github.com/okian/transferiq/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should start empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "Ada|Northbridge|2021/22")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "Ada|Northbridge|2021/22")
				seen := d.SeenAndRecord(ctx, "Ada|Northbridge|2021/22")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 0; i < 5; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
			}

			Convey("Then the oldest keys should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "key-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "key-0"), ShouldBeFalse)
			})
		})
	})
}

func TestFilter(t *testing.T) {
	Convey("Given rows with repeated keys", t, func() {
		rows := []string{"a", "b", "a", "c", "b", "a"}

		Convey("When filtering", func() {
			kept, dropped := dedupe.Filter(context.Background(), dedupe.NewInMemoryDeduper(), rows, func(s string) string { return s })

			Convey("Then the first occurrence should be kept in order", func() {
				So(kept, ShouldResemble, []string{"a", "b", "c"})
				So(dropped, ShouldEqual, 3)
			})
		})
	})
}
