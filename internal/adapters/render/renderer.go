package render

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/hrdash/pkg/metrics"
)

const (
	defaultWidth     = 960
	defaultHeight    = 480
	defaultCacheSize = 64
	maxSide          = 4096
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the default image size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithCacheSize sets how many rendered images are kept.
func WithCacheSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.cacheSize = n
		}
	}
}

type cacheKey struct {
	id            string
	width, height int
}

// Renderer turns chart descriptions into PNG bytes and caches the result by
// chart id and size. Chart inputs never change for a given id, so entries
// are only evicted for space.
type Renderer struct {
	width, height int
	cacheSize     int
	cache         *lru.Cache[cacheKey, []byte]
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{width: defaultWidth, height: defaultHeight, cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(r)
	}
	cache, err := lru.New[cacheKey, []byte](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create chart cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Size returns the default image size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Cached returns the number of images in the cache.
func (r *Renderer) Cached() int { return r.cache.Len() }

// Render returns the PNG for id at the given size, calling build only on a
// cache miss. A zero width or height selects the default for that side.
func (r *Renderer) Render(id string, width, height int, build func() Chart) ([]byte, error) {
	if width == 0 {
		width = r.width
	}
	if height == 0 {
		height = r.height
	}
	if width <= 0 || height <= 0 || width > maxSide || height > maxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	key := cacheKey{id: id, width: width, height: height}
	if png, ok := r.cache.Get(key); ok {
		metrics.RecordChartCacheHit()
		return png, nil
	}
	metrics.RecordChartCacheMiss()

	start := time.Now()
	chart := build()
	png, err := draw(chart, width, height)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", id, err)
	}
	metrics.RecordChartRender(chart.Kind.String(), float64(time.Since(start).Microseconds())/1000)

	r.cache.Add(key, png)
	metrics.UpdateChartCacheEntries(r.cache.Len())
	return png, nil
}
