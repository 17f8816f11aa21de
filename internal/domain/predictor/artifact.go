package predictor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Artifact formats understood by Decode.
const (
	FormatGradientBoosting   = "gradient_boosting"
	FormatLogisticRegression = "logistic_regression"
)

const defaultThreshold = 0.5

// artifact is the on-disk JSON envelope of a fitted model.
type artifact struct {
	Format             string              `json:"format"`
	Threshold          *float64            `json:"threshold,omitempty"`
	Schema             Schema              `json:"schema"`
	GradientBoosting   *GradientBoosting   `json:"gradient_boosting,omitempty"`
	LogisticRegression *LogisticRegression `json:"logistic_regression,omitempty"`
}

// LoadFile reads and decodes the model artifact at path.
func LoadFile(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	defer func() { _ = f.Close() }()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode reads one JSON artifact and returns the model it describes.
func Decode(r io.Reader) (Model, error) {
	var a artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrModelLoad, err)
	}
	if err := a.Schema.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	threshold := defaultThreshold
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("%w: threshold %v outside (0,1)", ErrModelLoad, threshold)
	}

	switch a.Format {
	case FormatGradientBoosting:
		g := a.GradientBoosting
		if g == nil {
			return nil, fmt.Errorf("%w: missing %s section", ErrModelLoad, a.Format)
		}
		g.Schema, g.Threshold = a.Schema, threshold
		if err := g.validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		return g, nil
	case FormatLogisticRegression:
		l := a.LogisticRegression
		if l == nil {
			return nil, fmt.Errorf("%w: missing %s section", ErrModelLoad, a.Format)
		}
		l.Schema, l.Threshold = a.Schema, threshold
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrModelLoad, ErrUnsupportedFormat, a.Format)
	}
}
