package repository

import (
	"io"

	"github.com/okian/hrdash/pkg/logger"
)

// OpenFunc opens one input file for reading.
type OpenFunc func(path string) (io.ReadCloser, error)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithOpener replaces os.Open for reading the input files.
func WithOpener(open OpenFunc) Option {
	return func(l *Loader) {
		if open != nil {
			l.open = open
		}
	}
}

// WithLogger sets the logger used to report loads.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}
