package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an uninitialized process", t, func() {
		Convey("When Init is called", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(func() { Get().Info(context.Background(), "hello", String("k", "v")) }, ShouldNotPanic)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When Init is called with JSON and a file sink", func() {
			path := filepath.Join(t.TempDir(), "logs", "hrdash.log")
			So(Init(WithJSON(true), WithFile(path, 1, 1)), ShouldBeNil)
			Get().Warn(context.Background(), "to file", Int("n", 1))
			So(Sync(), ShouldBeNil)

			Convey("Then the rotated file exists and holds the entry", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"msg":"to file"`)
			})

			Reset(func() { _ = Init() })
		})
	})
}

func TestLoggerFields(t *testing.T) {
	Convey("Given a logger backed by an observer core", t, func() {
		core, logs := observer.New(zapcore.DebugLevel)
		useCore(core)
		Reset(func() { _ = Init() })

		ctx := context.Background()

		Convey("When logging with structured fields", func() {
			Get().Info(ctx, "scored", String("label", "HighRisk"), Float64("p", 0.38), Bool("ok", true))

			Convey("Then the fields and source are attached", func() {
				So(logs.Len(), ShouldEqual, 1)
				entry := logs.All()[0]
				fields := entry.ContextMap()
				So(entry.Message, ShouldEqual, "scored")
				So(fields["label"], ShouldEqual, "HighRisk")
				So(fields["p"], ShouldEqual, 0.38)
				So(fields["ok"], ShouldEqual, true)
				So(fields["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging an error field", func() {
			Get().Error(ctx, "failed", Error(errors.New("boom")))

			Convey("Then the error is encoded under the error key", func() {
				So(logs.All()[0].ContextMap()["error"], ShouldEqual, "boom")
			})
		})

		Convey("When using a named logger", func() {
			Named("predictor").Debug(ctx, "loaded")

			Convey("Then the entry carries the logger name", func() {
				So(logs.All()[0].LoggerName, ShouldEqual, "predictor")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the global level", t, func() {
		Reset(func() { SetLevel(zapcore.InfoLevel) })

		Convey("Valid names are accepted", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.DebugLevel)
			So(SetLevelString(" WARNING "), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.WarnLevel)
			So(SetLevelString("error"), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.ErrorLevel)
			So(SetLevelString(""), ShouldBeNil)
			So(Level(), ShouldEqual, zapcore.InfoLevel)
		})

		Convey("Unknown names are rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown log level")
		})
	})
}
