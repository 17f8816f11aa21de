package predictor

import "errors"

// Sentinel kinds for predictor errors. These allow errors.Is from callers.
var (
	// ErrModelLoad reports an artifact that cannot be located or decoded.
	ErrModelLoad = errors.New("model load failed")
	// ErrUnsupportedFormat reports an artifact whose format is not known.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrInference reports a record the model cannot evaluate.
	ErrInference = errors.New("inference failed")
	// ErrSchemaMismatch reports a record with missing, extra or mistyped fields.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrUnknownCategory reports a categorical value the model was not fitted on.
	ErrUnknownCategory = errors.New("unknown category")
)
