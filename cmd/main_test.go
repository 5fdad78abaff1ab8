package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	app "github.com/okian/breezeapi/internal/app"
	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/internal/config"
	"github.com/okian/breezeapi/pkg/logger"
	"github.com/okian/breezeapi/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func setEnv(kv map[string]string) func() {
	for k, v := range kv {
		_ = os.Setenv(k, v)
	}
	return func() {
		for k := range kv {
			_ = os.Unsetenv(k)
		}
	}
}

func gaugeValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	convey.So(err, convey.ShouldBeNil)
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			defer setEnv(map[string]string{
				"BREEZE_URL":     "https://demo.breezechms.com/",
				"BREEZE_API_KEY": "secret",
				"BREEZE_ADDR":    ":8080",
			})()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.URL, convey.ShouldEqual, "https://demo.breezechms.com")
				convey.So(cfg.APIKey, convey.ShouldEqual, "secret")
			})
		})

		convey.Convey("When credentials are missing", func() {
			defer setEnv(map[string]string{"BREEZE_ADDR": ":8080"})()

			convey.Convey("Then the process refuses to start", func() {
				convey.So(os.Getenv("BREEZE_URL"), convey.ShouldBeEmpty)
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a metrics manager with its own registry is creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx, 10*time.Millisecond) }, convey.ShouldNotPanic)

			convey.Convey("Then the goroutine gauge has been set", func() {
				convey.So(gaugeValue("breeze_facade_system_goroutine_count"), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the updater interval comes from the metrics manager", func() {
			convey.So(metrics.RefreshInterval(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("When system metrics are updated directly", func() {
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service wired the way main wires it", t, func() {
		cfg := config.New(context.Background())
		cfg.URL = "https://demo.breezechms.com"
		cfg.APIKey = "secret"
		cfg.Addr = "127.0.0.1:0"
		cfg.ShutdownTimeout = time.Second

		svc := app.New(
			app.WithLogger(logger.NewNop()),
			app.WithConfig(cfg),
			app.WithClient(breeze.NewMockClient()),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)

		convey.Convey("Then the health endpoint answers", func() {
			resp, err := http.Get("http://" + svc.Addr() + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Reset(func() { _ = svc.Stop(context.Background()) })
	})
}
