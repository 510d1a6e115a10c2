package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/regatta/internal/adapters/http/live"
	"github.com/okian/regatta/internal/config"
	"github.com/okian/regatta/internal/domain/types"
	"github.com/okian/regatta/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		_ = logger.Init(logger.WithWriter(io.Discard))
		ctx := context.Background()

		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("REGATTA_ADDR", ":8080")
			_ = os.Setenv("REGATTA_QUEUE_SIZE", "64")
			_ = os.Setenv("REGATTA_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("REGATTA_ADDR")
				_ = os.Unsetenv("REGATTA_QUEUE_SIZE")
				_ = os.Unsetenv("REGATTA_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the service is built from defaults", func() {
			cfg := config.New(ctx)
			hub := live.NewHub()
			defer hub.Close()

			svc, err := newService(cfg, hub)

			convey.Convey("Then it carries the configured tie-break", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.GetStats()["tieBreak"], convey.ShouldEqual, "sail_number")
			})
		})

		convey.Convey("When the tie-break is unknown", func() {
			cfg := config.New(ctx)
			cfg.TieBreak = "coin_toss"

			_, err := newService(cfg, live.NewHub())

			convey.Convey("Then the service is not built", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("Given a running service behind the full handler", t, func() {
		_ = logger.Init(logger.WithWriter(io.Discard))
		ctx := context.Background()
		cfg := config.New(ctx)
		hub := live.NewHub()
		defer hub.Close()

		svc, err := newService(cfg, hub)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		_, err = svc.Seed(ctx)
		convey.So(err, convey.ShouldBeNil)

		srv := httptest.NewServer(newHandler(ctx, cfg, svc, hub))
		defer srv.Close()

		convey.Convey("When the scores are requested", func() {
			resp, err := http.Get(srv.URL + "/scores")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			var boards []types.Scoreboard
			convey.So(json.NewDecoder(resp.Body).Decode(&boards), convey.ShouldBeNil)

			convey.Convey("Then the demo regatta is scored", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(boards, convey.ShouldHaveLength, 1)
				convey.So(boards[0].Name, convey.ShouldEqual, "Test Regatta")
				convey.So(boards[0].Rows, convey.ShouldHaveLength, 9)
			})
		})

		convey.Convey("When the API reference is requested", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			convey.Convey("Then it is served from the same router", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(body), convey.ShouldContainSubstring, "/regattas/{id}/scores")
			})
		})

		convey.Convey("When metrics are requested", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then they are exposed", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"), convey.ShouldBeTrue)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		_ = logger.Init(logger.WithWriter(io.Discard))
		svc, err := newService(config.New(context.Background()), live.NewHub())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When they run until their context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then they return without panicking", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updated directly", func() {
			convey.Convey("Then nothing panics", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
