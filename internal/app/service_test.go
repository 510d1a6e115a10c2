package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/regatta/internal/app"
	"github.com/okian/regatta/internal/domain/scoring"
	"github.com/okian/regatta/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["tieBreak"], ShouldEqual, "sail_number")
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50),
			service.WithDedupeSize(25),
			service.WithTieBreak(scoring.TieBreakNone),
			service.WithLogger(logger.Nop()),
		)

		Convey("Then they are applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50)
			So(stats["dedupeSize"], ShouldEqual, 25)
			So(stats["tieBreak"], ShouldEqual, "none")
		})
	})

	Convey("Given invalid sizes", t, func() {
		svc := service.New(service.WithWorkerCount(0), service.WithQueueSize(-1))

		Convey("Then the defaults are kept", func() {
			So(svc.GetStats()["workerCount"], ShouldEqual, 2)
			So(svc.GetStats()["queueSize"], ShouldEqual, 1024)
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then every store operation fails", func() {
			_, err := svc.Roster(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.CreateSkipper(ctx, "Ann", "1")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Scoreboard(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.Reset(ctx, true), service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("And stopping it is a no-op", func() {
			So(func() { svc.Stop() }, ShouldNotPanic)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then it should be marked as started", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["skippers"], ShouldEqual, 0)
			So(stats["queueLength"], ShouldEqual, 0)
		})

		Convey("When starting it again", func() {
			Convey("Then nothing happens", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})

		Convey("When it is stopped and restarted", func() {
			_, err := svc.CreateSkipper(ctx, "Ann", "7")
			So(err, ShouldBeNil)
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the store keeps its contents", func() {
				roster, err := svc.Roster(ctx)
				So(err, ShouldBeNil)
				So(roster, ShouldHaveLength, 1)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithDedupeSize(2))
		ctx := context.Background()

		Convey("When checking a new key", func() {
			Convey("Then it should not have been seen before", func() {
				So(svc.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
				So(svc.Size(), ShouldEqual, 1)
			})
		})

		Convey("When checking the same key again", func() {
			svc.SeenAndRecord(ctx, "k2")

			Convey("Then it should have been seen before", func() {
				So(svc.SeenAndRecord(ctx, "k2"), ShouldBeTrue)
			})
		})

		Convey("When a key is unrecorded", func() {
			svc.SeenAndRecord(ctx, "k3")
			svc.Unrecord(ctx, "k3")

			Convey("Then it can be used again", func() {
				So(svc.SeenAndRecord(ctx, "k3"), ShouldBeFalse)
			})
		})
	})
}
