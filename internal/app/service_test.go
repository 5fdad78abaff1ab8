package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/breezeapi/internal/app"
	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/internal/config"
	"github.com/okian/breezeapi/pkg/logger"
)

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.URL = "https://demo.breezechms.com"
	cfg.APIKey = "secret"
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func newService(client breeze.Client) *service.Service {
	return service.New(
		service.WithLogger(logger.NewNop()),
		service.WithConfig(testConfig()),
		service.WithClient(client),
	)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not started and has no address", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Addr(), ShouldBeEmpty)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("And starting without credentials fails before listening", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			So(svc.Addr(), ShouldBeEmpty)
		})
	})
}

func TestService_Handler(t *testing.T) {
	Convey("Given a service over an in-memory client", t, func() {
		mock := breeze.NewMockClient()
		id := mock.SeedPerson(breeze.Person{FirstName: "Ada", LastName: "Lovelace"})
		svc := newService(mock)

		h, err := svc.Handler(context.Background())
		So(err, ShouldBeNil)

		Convey("Then API routes reach the client", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/people/"+id, http.NoBody))
			So(rec.Code, ShouldEqual, http.StatusOK)

			var p breeze.Person
			So(json.Unmarshal(rec.Body.Bytes(), &p), ShouldBeNil)
			So(p.FirstName, ShouldEqual, "Ada")
		})

		Convey("And the docs routes are mounted", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the handler is built once", func() {
			again, err := svc.Handler(context.Background())
			So(err, ShouldBeNil)
			So(again, ShouldEqual, h)
		})
	})

	Convey("Given a service without an injected client", t, func() {
		svc := service.New(service.WithLogger(logger.NewNop()), service.WithConfig(testConfig()))

		Convey("Then it builds the HTTP client from configuration", func() {
			h, err := svc.Handler(context.Background())
			So(err, ShouldBeNil)
			So(h, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(breeze.NewMockClient())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Addr(), ShouldNotBeEmpty)

		Convey("Then it serves the health endpoint", func() {
			resp, err := http.Get("http://" + svc.Addr() + "/healthz")
			So(err, ShouldBeNil)
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And starting twice is a no-op", func() {
			addr := svc.Addr()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Addr(), ShouldEqual, addr)
		})

		Convey("And stopping shuts the server down", func() {
			addr := svc.Addr()
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)

			_, err := http.Get("http://" + addr + "/healthz")
			So(err, ShouldNotBeNil)

			Convey("And stopping again reports not started", func() {
				So(svc.Stop(ctx), ShouldEqual, service.ErrNotStarted)
			})
		})

		Reset(func() { _ = svc.Stop(context.Background()) })
	})
}

func TestService_StopBeforeStart(t *testing.T) {
	Convey("Given a service that never started", t, func() {
		svc := newService(breeze.NewMockClient())

		Convey("Then Stop reports it", func() {
			So(svc.Stop(context.Background()), ShouldEqual, service.ErrNotStarted)
		})
	})
}

func TestService_ListenFailure(t *testing.T) {
	Convey("Given an address already in use", t, func() {
		first := newService(breeze.NewMockClient())
		So(first.Start(context.Background()), ShouldBeNil)

		cfg := testConfig()
		cfg.Addr = first.Addr()
		second := service.New(
			service.WithLogger(logger.NewNop()),
			service.WithConfig(cfg),
			service.WithClient(breeze.NewMockClient()),
		)

		Convey("Then Start returns the bind error", func() {
			So(second.Start(context.Background()), ShouldNotBeNil)
		})

		Reset(func() { _ = first.Stop(context.Background()) })
	})
}
