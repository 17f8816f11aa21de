package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/hrdash/internal/adapters/http/api"
	"github.com/okian/hrdash/internal/adapters/http/site"
	"github.com/okian/hrdash/internal/adapters/http/swagger"
	"github.com/okian/hrdash/internal/adapters/repository"
	app "github.com/okian/hrdash/internal/app"
	"github.com/okian/hrdash/internal/config"
	"github.com/okian/hrdash/pkg/logger"
	"github.com/okian/hrdash/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Exit codes.
const (
	exitOK       = 0
	exitConfig   = 1
	exitDataLoad = 2
	exitServer   = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return exitConfig
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON), logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)); err != nil {
		os.Stderr.WriteString("failed to initialize log sinks: " + err.Error() + "\n")
		return exitConfig
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(serviceOptions(cfg)...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		if errors.Is(err, repository.ErrDataLoad) {
			return exitDataLoad
		}
		return exitConfig
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux, err := newMux(ctx, svc)
	if err != nil {
		log.Error(ctx, "failed to build routes", logger.Error(err))
		return exitConfig
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	code := exitOK
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			code = exitServer
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return code
}

// serviceOptions maps the loaded configuration onto service options.
func serviceOptions(cfg *config.Config) []app.Option {
	return []app.Option{
		app.WithLogger(logger.Get()),
		app.WithDataPaths(repository.Paths{
			Snapshot: cfg.SnapshotPath,
			Roster:   cfg.RosterPath,
			Salaries: cfg.SalaryPath,
		}),
		app.WithModelPath(cfg.ModelPath),
		app.WithChartSize(cfg.ChartWidth, cfg.ChartHeight),
		app.WithChartCacheSize(cfg.ChartCacheSize),
		app.WithHistogramBins(cfg.HistogramBins),
		app.WithTopEarners(cfg.TopEarners),
		app.WithPrerenderWorkers(cfg.PrerenderWorkers),
	}
}

// newMux wires the docs, JSON API and dashboard pages onto one mux.
func newMux(ctx context.Context, svc *app.Service) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)

	pages, err := site.NewHandler(svc)
	if err != nil {
		return nil, err
	}
	pages.Register(ctx, mux)
	return mux, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically publishes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies gauge-like stats into their metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if cached, ok := stats["cachedCharts"].(int); ok {
		metrics.UpdateChartCacheEntries(cached)
	}
	if workers, ok := stats["prerenderWorkers"].(int); ok {
		metrics.UpdatePrerenderWorkers(workers)
	}
}
