// Package worker runs a fixed set of goroutines that render queued charts
// into the chart cache.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/hrdash/internal/adapters/mq/queue"
	"github.com/okian/hrdash/pkg/logger"
	"github.com/okian/hrdash/pkg/metrics"
)

// Renderer renders one chart job.
type Renderer interface {
	Prerender(ctx context.Context, job queue.Job) error
}

// Pool manages the workers reading one queue.
type Pool struct {
	name     string
	size     int
	queue    queue.Queue
	renderer Renderer
	logger   logger.Logger

	wg        sync.WaitGroup
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	active    atomic.Int32
	processed atomic.Int64
	failed    atomic.Int64
}

// NewPool creates a pool of size workers. A size below one is raised to one.
func NewPool(size int, q queue.Queue, r Renderer, opts ...Option) *Pool {
	p := &Pool{
		name:     "prerender",
		size:     max(size, 1),
		queue:    q,
		renderer: r,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Start launches the workers. Later calls do nothing.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.wg.Add(p.size)
		for i := 0; i < p.size; i++ {
			go p.run(ctx, p.logger.Named("worker-"+strconv.Itoa(i)))
		}
		go func() {
			p.wg.Wait()
			close(p.done)
		}()
	})
}

// run renders jobs until the queue is drained and closed or ctx ends.
func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()
	metrics.UpdatePrerenderWorkers(int(p.active.Add(1)))
	defer func() { metrics.UpdatePrerenderWorkers(int(p.active.Add(-1))) }()

	jobs := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.UpdatePrerenderQueueSize(p.queue.Len(ctx))
			p.process(ctx, log, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, log logger.Logger, job queue.Job) {
	if err := p.renderer.Prerender(ctx, job); err != nil {
		p.failed.Add(1)
		metrics.RecordPrerenderJob("error")
		metrics.RecordErrorByComponent("prerender", "render_error")
		log.Warn(ctx, "chart prerender failed", logger.String("chart", job.ChartID), logger.Error(err))
		return
	}
	p.processed.Add(1)
	metrics.RecordPrerenderJob("ok")
	log.Debug(ctx, "chart prerendered", logger.String("chart", job.ChartID))
}

// Done is closed once every worker has exited.
func (p *Pool) Done() <-chan struct{} { return p.done }

// Processed returns the number of jobs rendered successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns the number of jobs whose render failed.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() {
		if err := p.queue.Close(); err != nil {
			p.logger.Debug(ctx, "queue already closed", logger.Error(err))
		}
	})
	p.Start(ctx)

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "prerender shutdown timed out")
		return fmt.Errorf("prerender shutdown: %w", ctx.Err())
	}
}
