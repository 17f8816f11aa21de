package render

import "errors"

// Sentinel kinds for chart rendering errors.
var (
	ErrEmptyChart  = errors.New("chart has no data")
	ErrInvalidSize = errors.New("invalid chart size")
	ErrFont        = errors.New("font unavailable")
)
