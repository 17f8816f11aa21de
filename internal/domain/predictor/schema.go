package predictor

import (
	"fmt"
	"math"

	"github.com/okian/hrdash/internal/domain/features"
)

// Column kinds accepted by a schema.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// Column describes one input column of the fitted model.
type Column struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Categories []string `json:"categories,omitempty"`
}

// Schema is the ordered input layout a model was fitted against.
type Schema []Column

// EncodedName returns the name of the one-hot column for a category.
func EncodedName(column, category string) string {
	return column + "=" + category
}

// validate checks the schema itself when an artifact is decoded.
func (s Schema) validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]struct{}, len(s))
	for _, c := range s {
		if c.Name == "" {
			return fmt.Errorf("schema column without name")
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate schema column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		switch c.Kind {
		case KindNumeric:
		case KindCategorical:
			if len(c.Categories) == 0 {
				return fmt.Errorf("categorical column %q has no categories", c.Name)
			}
		default:
			return fmt.Errorf("column %q has unknown kind %q", c.Name, c.Kind)
		}
	}
	return nil
}

// encodedColumns lists every column name produced by encode.
func (s Schema) encodedColumns() map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range s {
		if c.Kind == KindNumeric {
			out[c.Name] = struct{}{}
			continue
		}
		for _, cat := range c.Categories {
			out[EncodedName(c.Name, cat)] = struct{}{}
		}
	}
	return out
}

// encode checks rec against the schema and returns the numeric design row.
// Field order in rec is irrelevant.
func (s Schema) encode(rec features.Record) (map[string]float64, error) {
	for key := range rec {
		if !s.has(key) {
			return nil, fmt.Errorf("%w: %w: unexpected field %q", ErrInference, ErrSchemaMismatch, key)
		}
	}
	row := make(map[string]float64, len(rec)*2)
	for _, c := range s {
		v, ok := rec[c.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %w: missing field %q", ErrInference, ErrSchemaMismatch, c.Name)
		}
		switch c.Kind {
		case KindNumeric:
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: %w: field %q must be numeric, got %T", ErrInference, ErrSchemaMismatch, c.Name, v)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("%w: field %q is not finite", ErrInference, c.Name)
			}
			row[c.Name] = f
		case KindCategorical:
			str, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %w: field %q must be a string, got %T", ErrInference, ErrSchemaMismatch, c.Name, v)
			}
			matched := false
			for _, cat := range c.Categories {
				hot := 0.0
				if cat == str {
					hot = 1
					matched = true
				}
				row[EncodedName(c.Name, cat)] = hot
			}
			if !matched {
				return nil, fmt.Errorf("%w: %w: %s=%q", ErrInference, ErrUnknownCategory, c.Name, str)
			}
		}
	}
	return row, nil
}

func (s Schema) has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
