package repository

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrDataLoad      = errors.New("data load failed")
	ErrMissingColumn = errors.New("missing required column")
	ErrBadCell       = errors.New("unparsable cell")
)
