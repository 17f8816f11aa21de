package predictor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/hrdash/pkg/logger"
	"github.com/okian/hrdash/pkg/metrics"
)

// OpenFunc loads a model from a path.
type OpenFunc func(path string) (Model, error)

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithOpener replaces the artifact reader, LoadFile by default.
func WithOpener(open OpenFunc) LoaderOption {
	return func(l *Loader) {
		if open != nil {
			l.open = open
		}
	}
}

// WithLogger sets the logger used to report loads.
func WithLogger(log logger.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// Loader loads the model artifact on first use and memoizes it. Concurrent
// first uses share a single read. A failed load is reported to every waiting
// caller and attempted again on the next Get.
type Loader struct {
	path   string
	open   OpenFunc
	logger logger.Logger

	group singleflight.Group
	mu    sync.RWMutex
	model Model
}

// NewLoader creates a lazy loader for the artifact at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{path: path, open: LoadFile}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the artifact location.
func (l *Loader) Path() string { return l.path }

// Loaded reports whether a model is memoized.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model != nil
}

// Get returns the memoized model, loading it if needed.
func (l *Loader) Get(ctx context.Context) (Model, error) {
	l.mu.RLock()
	m := l.model
	l.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	ch := l.group.DoChan(l.path, func() (any, error) {
		l.mu.RLock()
		cached := l.model
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		start := time.Now()
		loaded, err := l.open(l.path)
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		if err != nil {
			if !errors.Is(err, ErrModelLoad) {
				err = fmt.Errorf("%w: %w", ErrModelLoad, err)
			}
			metrics.RecordModelLoad("error", elapsed)
			if l.logger != nil {
				l.logger.Error(ctx, "model load failed", logger.String("path", l.path), logger.Error(err))
			}
			return nil, err
		}
		metrics.RecordModelLoad("ok", elapsed)
		if l.logger != nil {
			l.logger.Info(ctx, "model loaded", logger.String("path", l.path), logger.Float64("ms", elapsed))
		}

		l.mu.Lock()
		l.model = loaded
		l.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load model: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Model), nil
	}
}
