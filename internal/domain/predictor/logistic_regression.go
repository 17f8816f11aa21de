package predictor

import (
	"fmt"
	"sort"

	"github.com/okian/hrdash/internal/domain/features"
)

// LogisticRegression is a linear model over the encoded schema.
type LogisticRegression struct {
	Schema    Schema             `json:"-"`
	Threshold float64            `json:"-"`
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`

	order []string // weight keys, sorted so the sum is reproducible
}

func (l *LogisticRegression) validate() error {
	if len(l.Weights) == 0 {
		return fmt.Errorf("model has no weights")
	}
	cols := l.Schema.encodedColumns()
	for name := range l.Weights {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("weight for unknown column %q", name)
		}
		l.order = append(l.order, name)
	}
	sort.Strings(l.order)
	return nil
}

// Evaluate returns the label and positive-class probability from one pass.
func (l *LogisticRegression) Evaluate(rec features.Record) (int, float64, error) {
	row, err := l.Schema.encode(rec)
	if err != nil {
		return 0, 0, err
	}
	z := l.Intercept
	for _, name := range l.order {
		z += l.Weights[name] * row[name]
	}
	p := sigmoid(z)
	return decide(p, l.Threshold), p, nil
}

// PredictLabel implements Model.
func (l *LogisticRegression) PredictLabel(rec features.Record) (int, error) {
	label, _, err := l.Evaluate(rec)
	return label, err
}

// PredictProbability implements Model.
func (l *LogisticRegression) PredictProbability(rec features.Record) (float64, error) {
	_, p, err := l.Evaluate(rec)
	return p, err
}
