package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/hrdash/pkg/logger"
	"github.com/okian/hrdash/pkg/metrics"
)

// Paths names the three input files.
type Paths struct {
	Snapshot string
	Roster   string
	Salaries string
}

// Loader reads the input files once and hands out the same Dataset on every
// later call. A failed load leaves nothing cached.
type Loader struct {
	paths  Paths
	open   OpenFunc
	logger logger.Logger

	mu      sync.Mutex
	dataset *Dataset
	reads   atomic.Int64
}

// NewLoader creates a loader for the given file paths.
func NewLoader(paths Paths, opts ...Option) *Loader {
	l := &Loader{
		paths: paths,
		open:  func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reads reports how many times the input files were actually read.
func (l *Loader) Reads() int64 { return l.reads.Load() }

// Load returns the Dataset, reading the files on the first successful call.
// Every failure wraps ErrDataLoad.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dataset != nil {
		return l.dataset, nil
	}

	l.reads.Add(1)
	start := time.Now()
	ds, err := l.read(ctx)
	if err != nil {
		if l.logger != nil {
			l.logger.Error(ctx, "dataset load failed", logger.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	metrics.RecordDatasetLoad(elapsed)
	metrics.UpdateDatasetRows("snapshot", len(ds.snapshot))
	metrics.UpdateDatasetRows("roster", len(ds.roster))
	metrics.UpdateDatasetRows("salary", len(ds.salaries))
	if l.logger != nil {
		l.logger.Info(ctx, "dataset loaded",
			logger.Int("snapshot_rows", len(ds.snapshot)),
			logger.Int("roster_rows", len(ds.roster)),
			logger.Int("salary_rows", len(ds.salaries)),
			logger.Float64("ms", elapsed),
		)
	}

	l.dataset = ds
	return ds, nil
}

func (l *Loader) read(ctx context.Context) (*Dataset, error) {
	snapshot, err := readFile(ctx, l.open, l.paths.Snapshot, parseSnapshot)
	if err != nil {
		return nil, err
	}
	roster, err := readFile(ctx, l.open, l.paths.Roster, parseRoster)
	if err != nil {
		return nil, err
	}
	salaries, err := readFile(ctx, l.open, l.paths.Salaries, parseSalaries)
	if err != nil {
		return nil, err
	}
	return NewDataset(snapshot, roster, salaries), nil
}

func readFile[T any](ctx context.Context, open OpenFunc, path string, parse func(string, io.Reader) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parse(path, f)
}
