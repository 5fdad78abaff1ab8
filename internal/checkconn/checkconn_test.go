package checkconn

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/breezeapi/internal/breeze"
)

func newBreeze(t *testing.T, status int, body string) (*breeze.HTTPClient, *http.Request) {
	t.Helper()
	var last http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = *r.Clone(context.Background())
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := breeze.NewHTTPClient(breeze.Options{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return c, &last
}

func TestRun(t *testing.T) {
	Convey("Given a Breeze account with two people", t, func() {
		client, last := newBreeze(t, http.StatusOK,
			`[{"id":"1","first_name":"Ada","last_name":"Lovelace"},{"id":"2","first_name":"Alan","last_name":"Turing"}]`)
		var out bytes.Buffer

		Convey("When the check runs", func() {
			res, err := Run(context.Background(), client, Config{Limit: 5, Verbose: true}, &out)

			Convey("Then it reports the people count", func() {
				So(err, ShouldBeNil)
				So(res.People, ShouldHaveLength, 2)
				So(out.String(), ShouldContainSubstring, "Successfully connected to Breeze!")
				So(out.String(), ShouldContainSubstring, "Found 2 people in the database")
				So(out.String(), ShouldContainSubstring, "Ada Lovelace")
			})

			Convey("And the limit and api key are forwarded", func() {
				So(last.URL.Path, ShouldEqual, "/api/people")
				So(last.URL.Query().Get("limit"), ShouldEqual, "5")
				So(last.Header.Get("Api-Key"), ShouldEqual, "secret")
			})
		})
	})

	Convey("Given a Breeze account that rejects the request", t, func() {
		client, _ := newBreeze(t, http.StatusUnauthorized, `{"success":false,"errors":"Invalid API key"}`)
		var out bytes.Buffer

		Convey("Then the check fails without printing success", func() {
			res, err := Run(context.Background(), client, Config{}, &out)
			So(err, ShouldNotBeNil)
			So(res, ShouldBeNil)
			So(out.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given an in-memory client", t, func() {
		m := breeze.NewMockClient()
		m.SeedPerson(breeze.Person{FirstName: "Grace", LastName: "Hopper"})
		var out bytes.Buffer

		Convey("Then the count comes from the client", func() {
			res, err := Run(context.Background(), m, Config{Timeout: time.Second}, &out)
			So(err, ShouldBeNil)
			So(res.People, ShouldHaveLength, 1)
			So(out.String(), ShouldContainSubstring, "Found 1 people")
		})
	})
}
