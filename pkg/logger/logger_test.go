package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then Get returns a usable logger", func() {
			l := Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "test message", String("k", "v"), Int("n", 1))
				l.Warn(context.Background(), "warn message", Error(errors.New("boom")))
				l.Debug(context.Background(), "debug message", Duration("took", time.Second))
			}, ShouldNotPanic)
		})

		Convey("And Named returns a child logger", func() {
			named := Named("test")
			So(named, ShouldNotBeNil)
			So(func() { named.Info(context.Background(), "named message") }, ShouldNotPanic)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Known levels are accepted case-insensitively", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, zapcore.DebugLevel)
			So(SetLevelString(" warning "), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, zapcore.WarnLevel)
			So(SetLevelString(""), ShouldBeNil)
			So(levelVar.Level(), ShouldEqual, zapcore.InfoLevel)
		})

		Convey("Unknown levels are rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown log level")
		})
	})
}

func TestRequestIDContext(t *testing.T) {
	Convey("Given a context carrying a request id", t, func() {
		ctx := ContextWithRequestID(context.Background(), "rid-1")

		Convey("Then it can be read back", func() {
			So(RequestIDFromContext(ctx), ShouldEqual, "rid-1")
			So(RequestIDFromContext(context.Background()), ShouldEqual, "")
		})

		Convey("And it is prepended to converted fields", func() {
			fields := convertFields(ctx, []Field{String("a", "b")})
			So(len(fields), ShouldEqual, 2)
			So(fields[0].Key, ShouldEqual, "request_id")
			So(fields[1].Key, ShouldEqual, "a")
		})
	})
}

func TestNop(t *testing.T) {
	Convey("NewNop never panics", t, func() {
		l := NewNop()
		So(func() { l.Named("x").Error(context.Background(), "dropped") }, ShouldNotPanic)
	})
}
