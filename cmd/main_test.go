package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/hrdash/internal/adapters/repository"
	app "github.com/okian/hrdash/internal/app"
	"github.com/okian/hrdash/internal/config"
	"github.com/okian/hrdash/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fixture(name string) string {
	return filepath.Join("..", "internal", "app", "testdata", name)
}

func startedService() *app.Service {
	svc := app.New(
		app.WithLogger(logger.Get()),
		app.WithDataPaths(repository.Paths{
			Snapshot: fixture("current_employee_snapshot.csv"),
			Roster:   fixture("employee.csv"),
			Salaries: fixture("salary.csv"),
		}),
		app.WithModelPath(fixture("retention_model.json")),
		app.WithPrerenderWorkers(0),
	)
	convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
	return svc
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		_ = os.Setenv("HRDASH_ADDR", ":9090")
		_ = os.Setenv("HRDASH_SNAPSHOT_PATH", fixture("current_employee_snapshot.csv"))
		_ = os.Setenv("HRDASH_ROSTER_PATH", fixture("employee.csv"))
		_ = os.Setenv("HRDASH_SALARY_PATH", fixture("salary.csv"))
		_ = os.Setenv("HRDASH_MODEL_PATH", fixture("retention_model.json"))
		_ = os.Setenv("HRDASH_PRERENDER_WORKERS", "0")
		defer func() {
			for _, k := range []string{"HRDASH_ADDR", "HRDASH_SNAPSHOT_PATH", "HRDASH_ROSTER_PATH", "HRDASH_SALARY_PATH", "HRDASH_MODEL_PATH", "HRDASH_PRERENDER_WORKERS"} {
				_ = os.Unsetenv(k)
			}
		}()

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":9090")

		convey.Convey("When the service is built from it", func() {
			svc := app.New(serviceOptions(cfg)...)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it reflects the configured paths", func() {
				stats := svc.GetStats()
				convey.So(stats["modelPath"], convey.ShouldEqual, fixture("retention_model.json"))
				convey.So(stats["prerenderWorkers"], convey.ShouldEqual, 0)
				convey.So(stats["employees"], convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRoutes(t *testing.T) {
	convey.Convey("Given the assembled mux", t, func() {
		svc := startedService()
		defer svc.Stop()

		mux, err := newMux(context.Background(), svc)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every surface answers", func() {
			for target, status := range map[string]int{
				"/":                     http.StatusFound,
				"/overview":             http.StatusOK,
				"/attrition":            http.StatusOK,
				"/hiring":               http.StatusOK,
				"/api/v1/choices":       http.StatusOK,
				"/api/v1/salaries":      http.StatusOK,
				"/charts/headcount.png": http.StatusOK,
				"/charts/nope.png":      http.StatusNotFound,
				"/openapi.yaml":         http.StatusOK,
				"/api-docs":             http.StatusOK,
				"/healthz":              http.StatusOK,
				"/stats":                http.StatusOK,
				"/static/style.css":     http.StatusOK,
			} {
				rr := httptest.NewRecorder()
				mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
				convey.So(rr.Code, convey.ShouldEqual, status)
			}
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		convey.Convey("Then they stop with their context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then single updates do not panic", func() {
			svc := app.New()
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
