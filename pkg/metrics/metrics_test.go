package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
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
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metric names carry the namespace", func() {
				manager.RecordUpstreamCall("get_people", "ok", 12)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_namespace_test_subsystem_upstream_calls_total"], ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given an isolated manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording upstream calls", func() {
			m.RecordUpstreamCall("get_people", "ok", 10)
			m.RecordUpstreamCall("get_people", "ok", 20)
			m.RecordUpstreamCall("get_people", "error", 30)

			Convey("Then counters are split by outcome", func() {
				So(testutil.ToFloat64(m.upstreamCalls.WithLabelValues("get_people", "ok")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.upstreamCalls.WithLabelValues("get_people", "error")), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP requests and errors", func() {
			m.RecordHTTPRequest("/people", "GET", "200")
			m.RecordHTTPRequestDuration("/people", "GET", "200", 3)
			m.RecordErrorByEndpoint("/people/{person_id}", "GET", "not_found")
			m.RecordErrorByType("not_found", "medium")
			m.AddHTTPInFlight(1)
			m.AddHTTPInFlight(-1)

			Convey("Then they are observable", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/people", "GET", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("/people/{person_id}", "GET", "not_found")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.httpInFlight), ShouldEqual, 0)
			})
		})

		Convey("When the manager is disabled", func() {
			off := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))
			off.RecordHTTPRequest("/tags", "GET", "200")

			Convey("Then nothing is counted", func() {
				So(testutil.ToFloat64(off.httpRequests.WithLabelValues("/tags", "GET", "200")), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Global recorders never panic", t, func() {
		So(func() {
			RecordHTTPRequest("/", "GET", "200")
			RecordHTTPRequestDuration("/", "GET", "200", 1)
			AddHTTPInFlight(1)
			AddHTTPInFlight(-1)
			RecordUpstreamCall("list_campaigns", "ok", 5)
			RecordErrorByType("server_error", "high")
			RecordErrorByEndpoint("/campaigns", "GET", "server_error")
			UpdateSystemMemoryUsage(1024)
			UpdateSystemGoroutineCount(10)
			RecordSystemGCPauseTime(0.5)
		}, ShouldNotPanic)
		So(GetRegistry(), ShouldNotBeNil)
		So(RefreshInterval(), ShouldBeGreaterThan, 0)
	})
}
