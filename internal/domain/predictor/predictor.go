// Package predictor wraps a pre-trained attrition classifier behind a small
// adapter that turns a feature record into a risk label and probability.
package predictor

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/hrdash/internal/domain/features"
	"github.com/okian/hrdash/internal/domain/model"
)

// Positive and negative class values returned by PredictLabel.
const (
	ClassLeave = 1
	ClassStay  = 0
)

// Model is an opaque fitted binary classifier.
type Model interface {
	// PredictLabel returns the decided class, 0 or 1.
	PredictLabel(rec features.Record) (int, error)
	// PredictProbability returns the positive-class posterior.
	PredictProbability(rec features.Record) (float64, error)
}

// Evaluator is implemented by models that can produce the label and the
// probability from one evaluation.
type Evaluator interface {
	Evaluate(rec features.Record) (label int, probability float64, err error)
}

// Adapter exposes classify over a Model.
type Adapter struct {
	model Model
}

// NewAdapter wraps m.
func NewAdapter(m Model) *Adapter {
	return &Adapter{model: m}
}

// Classify scores one record. Label and probability come from the same
// evaluation whenever the model implements Evaluator.
func (a *Adapter) Classify(ctx context.Context, rec features.Record) (model.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return model.PredictionResult{}, fmt.Errorf("classify: %w", err)
	}
	if a.model == nil {
		return model.PredictionResult{}, fmt.Errorf("%w: no model", ErrModelLoad)
	}

	var (
		label int
		proba float64
		err   error
	)
	if ev, ok := a.model.(Evaluator); ok {
		label, proba, err = ev.Evaluate(rec)
		if err != nil {
			return model.PredictionResult{}, err
		}
	} else {
		if label, err = a.model.PredictLabel(rec); err != nil {
			return model.PredictionResult{}, err
		}
		if proba, err = a.model.PredictProbability(rec); err != nil {
			return model.PredictionResult{}, err
		}
	}

	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return model.PredictionResult{}, fmt.Errorf("%w: probability %v outside [0,1]", ErrInference, proba)
	}

	switch label {
	case ClassLeave:
		return model.PredictionResult{Label: model.HighRisk, Probability: proba}, nil
	case ClassStay:
		return model.PredictionResult{Label: model.LowRisk, Probability: proba}, nil
	default:
		return model.PredictionResult{}, fmt.Errorf("%w: unexpected class %d", ErrInference, label)
	}
}

// sigmoid maps log-odds to a probability.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// decide applies the decision threshold. A probability exactly at the
// threshold resolves to the negative class.
func decide(proba, threshold float64) int {
	if proba > threshold {
		return ClassLeave
	}
	return ClassStay
}
