package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When zero values are passed to options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "regatta")
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a scoreboard is recorded", func() {
			before := value(globalManager.scoreboardsComputed)
			penaltiesBefore := value(globalManager.absencePenalties)
			RecordScoreboard(0.2, 3, 2, 1)

			Convey("Then counters move by the reported amounts", func() {
				So(value(globalManager.scoreboardsComputed), ShouldEqual, before+1)
				So(value(globalManager.absencePenalties), ShouldEqual, penaltiesBefore+3)
			})
		})

		Convey("When domain size is updated", func() {
			UpdateDomainSize(9, 1, 9)

			Convey("Then gauges hold the values", func() {
				So(value(globalManager.skippers), ShouldEqual, 9)
				So(value(globalManager.regattas), ShouldEqual, 1)
				So(value(globalManager.races), ShouldEqual, 9)
			})
		})

		Convey("When every recorder is called", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordHTTPRequest("scores", "GET", "200", 1.5)
					RecordErrorByEndpoint("scores", "GET", "not_found")
					RecordDuplicateRequest()
					RecordRepositoryUpdateLatency(0.1)
					RecordRepositoryQueryLatency(0.1)
					UpdateQueueSize(1)
					UpdateQueueCapacity(10)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError("full")
					UpdateWorkerCount(2)
					RecordWorkerProcessingLatency(0.5)
					RecordWorkerError("load")
					UpdateLiveClients(1)
					RecordLivePublish()
					RecordLiveDrop()
					RecordErrorByComponent("api", "bad_request")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(4)
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

// value reads the current value of a counter or gauge.
func value(c prometheus.Metric) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}
