// Package service provides the core business service that implements
// the dependencies required by the HTTP API and pages.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hrdash/internal/adapters/mq/queue"
	"github.com/okian/hrdash/internal/adapters/mq/worker"
	"github.com/okian/hrdash/internal/adapters/render"
	"github.com/okian/hrdash/internal/adapters/repository"
	"github.com/okian/hrdash/internal/domain/analytics"
	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/internal/domain/predictor"
	"github.com/okian/hrdash/pkg/logger"
	"github.com/okian/hrdash/pkg/metrics"
)

const prerenderShutdownTimeout = 5 * time.Second

// Service owns the loaded dataset, the lazily loaded attrition model and
// the chart renderer.
type Service struct {
	mu sync.RWMutex

	// Core components
	data     *repository.Loader
	dataset  *repository.Dataset
	models   *predictor.Loader
	renderer *render.Renderer
	pool     *worker.Pool

	// Configuration
	paths            repository.Paths
	modelPath        string
	chartWidth       int
	chartHeight      int
	chartCacheSize   int
	histogramBins    int
	topEarners       int
	prerenderWorkers int

	// Page aggregates, computed on first use
	overview    func() analytics.Overview
	departments func() analytics.Departments
	salaries    func() analytics.Salaries
	diversity   func() analytics.Diversity
	hiring      func() analytics.Hiring

	// State
	started    bool
	startedAt  time.Time
	stopPool   context.CancelFunc
	predicted  atomic.Int64
	predictErr atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithDataPaths sets the three input table locations.
func WithDataPaths(paths repository.Paths) Option {
	return func(s *Service) {
		s.paths = paths
	}
}

// WithModelPath sets the model artifact location.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithModelLoader replaces the model loader built from the model path.
func WithModelLoader(l *predictor.Loader) Option {
	return func(s *Service) {
		s.models = l
	}
}

// WithChartSize sets the default chart size in pixels.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.chartWidth, s.chartHeight = width, height
		}
	}
}

// WithChartCacheSize bounds the number of cached chart images.
func WithChartCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chartCacheSize = n
		}
	}
}

// WithHistogramBins sets the salary histogram bin count.
func WithHistogramBins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.histogramBins = n
		}
	}
}

// WithTopEarners sets the per-department limit of the top earners list.
func WithTopEarners(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topEarners = n
		}
	}
}

// WithPrerenderWorkers sets how many workers warm the chart cache after
// Start. Zero disables warming.
func WithPrerenderWorkers(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.prerenderWorkers = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		paths: repository.Paths{
			Snapshot: "current_employee_snapshot.csv",
			Roster:   "employee.csv",
			Salaries: "salary.csv",
		},
		modelPath:        "retention_model.json",
		chartWidth:       960,
		chartHeight:      480,
		chartCacheSize:   64,
		histogramBins:    40,
		topEarners:       10,
		prerenderWorkers: 2,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset and prepares the renderer. A dataset failure is
// returned wrapping repository.ErrDataLoad and leaves the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting dashboard service...")

	if s.data == nil {
		s.data = repository.NewLoader(s.paths, repository.WithLogger(s.logger.Named("dataset")))
	}
	ds, err := s.data.Load(ctx)
	if err != nil {
		return err
	}
	s.dataset = ds

	if s.models == nil {
		s.models = predictor.NewLoader(s.modelPath, predictor.WithLogger(s.logger.Named("model")))
	}

	renderer, err := render.NewRenderer(
		render.WithSize(s.chartWidth, s.chartHeight),
		render.WithCacheSize(s.chartCacheSize),
	)
	if err != nil {
		return fmt.Errorf("start renderer: %w", err)
	}
	s.renderer = renderer

	s.overview = sync.OnceValue(func() analytics.Overview { return analytics.BuildOverview(ds, s.topEarners) })
	s.departments = sync.OnceValue(func() analytics.Departments { return analytics.BuildDepartments(ds) })
	s.salaries = sync.OnceValue(func() analytics.Salaries { return analytics.BuildSalaries(ds, s.histogramBins) })
	s.diversity = sync.OnceValue(func() analytics.Diversity { return analytics.BuildDiversity(ds) })
	s.hiring = sync.OnceValue(func() analytics.Hiring { return analytics.BuildHiring(ds) })

	if s.prerenderWorkers > 0 {
		s.startPrerender(ctx)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("employees", len(ds.Snapshot())),
		logger.Int("departments", len(ds.DistinctDepartments())),
		logger.Int("titles", len(ds.DistinctTitles())),
		logger.String("model", s.models.Path()),
		logger.Int("prerenderWorkers", s.prerenderWorkers),
	)

	return nil
}

// startPrerender queues every chart for the warming pool and lets the pool
// drain the queue in the background.
func (s *Service) startPrerender(ctx context.Context) {
	ids := ChartIDs()
	q := queue.NewInMemoryQueue(queue.WithCapacity(len(ids)))
	pool := worker.NewPool(s.prerenderWorkers, q, s, worker.WithLogger(s.logger.Named("prerender")))

	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pool.Start(poolCtx)
	for _, id := range ids {
		q.Enqueue(poolCtx, queue.Job{ChartID: id})
	}
	go func() {
		if err := pool.Shutdown(poolCtx); err != nil {
			s.logger.Debug(poolCtx, "prerender stopped early", logger.Error(err))
			return
		}
		s.logger.Info(poolCtx, "chart cache warmed",
			logger.Int("rendered", int(pool.Processed())),
			logger.Int("failed", int(pool.Failed())),
		)
	}()

	s.pool = pool
	s.stopPool = cancel
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	pool, cancel := s.pool, s.stopPool
	s.pool, s.stopPool = nil, nil
	s.started = false
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	// Workers may be mid-render; wait outside the lock.
	if pool != nil {
		cancel()
		select {
		case <-pool.Done():
		case <-time.After(prerenderShutdownTimeout):
			s.logger.Warn(ctx, "prerender workers did not stop in time")
		}
	}

	s.logger.Info(ctx, "dashboard service stopped")
}

// dataReady returns the dataset or ErrNotStarted.
func (s *Service) dataReady() (*repository.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.dataset, nil
}

// Choices lists the values offered by the prediction form.
type Choices struct {
	Genders     []string `json:"genders"`
	Titles      []string `json:"titles"`
	Departments []string `json:"departments"`
}

// Choices returns the prediction form choices drawn from the dataset.
func (s *Service) Choices(_ context.Context) (Choices, error) {
	ds, err := s.dataReady()
	if err != nil {
		return Choices{}, err
	}
	return Choices{
		Genders:     model.Genders(),
		Titles:      ds.DistinctTitles(),
		Departments: ds.DistinctDepartments(),
	}, nil
}

// Overview returns the workforce overview aggregates.
func (s *Service) Overview(_ context.Context) (analytics.Overview, error) {
	if _, err := s.dataReady(); err != nil {
		return analytics.Overview{}, err
	}
	return s.overview(), nil
}

// Departments returns the department insights aggregates.
func (s *Service) Departments(_ context.Context) (analytics.Departments, error) {
	if _, err := s.dataReady(); err != nil {
		return analytics.Departments{}, err
	}
	return s.departments(), nil
}

// Salaries returns the salary insights aggregates.
func (s *Service) Salaries(_ context.Context) (analytics.Salaries, error) {
	if _, err := s.dataReady(); err != nil {
		return analytics.Salaries{}, err
	}
	return s.salaries(), nil
}

// Diversity returns the diversity aggregates.
func (s *Service) Diversity(_ context.Context) (analytics.Diversity, error) {
	if _, err := s.dataReady(); err != nil {
		return analytics.Diversity{}, err
	}
	return s.diversity(), nil
}

// Hiring returns the hiring trend aggregates.
func (s *Service) Hiring(_ context.Context) (analytics.Hiring, error) {
	if _, err := s.dataReady(); err != nil {
		return analytics.Hiring{}, err
	}
	return s.hiring(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"modelPath":        s.modelPath,
		"prerenderWorkers": s.prerenderWorkers,
		"predictions":      s.predicted.Load(),
		"predictionErrors": s.predictErr.Load(),
	}

	if s.models != nil {
		stats["modelLoaded"] = s.models.Loaded()
	}
	if s.data != nil {
		stats["datasetReads"] = s.data.Reads()
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["employees"] = len(s.dataset.Snapshot())
		stats["rosterRows"] = len(s.dataset.Roster())
		stats["salaryRows"] = len(s.dataset.Salaries())
		stats["cachedCharts"] = s.renderer.Cached()
		metrics.UpdateChartCacheEntries(s.renderer.Cached())
	}

	return stats
}
