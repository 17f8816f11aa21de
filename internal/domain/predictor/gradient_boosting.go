package predictor

import (
	"fmt"

	"github.com/okian/hrdash/internal/domain/features"
)

// TreeNode is one node of a regression tree. Leaves carry Value; split nodes
// send rows with Feature <= Threshold to Left and the rest to Right.
type TreeNode struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// Tree is a flat regression tree rooted at index 0.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// GradientBoosting is a boosted ensemble of regression trees over the
// encoded schema, producing log-odds.
type GradientBoosting struct {
	Schema       Schema  `json:"-"`
	Threshold    float64 `json:"-"`
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []Tree  `json:"trees"`
}

// validate checks tree structure against the encoded columns. Children must
// point forward so evaluation always terminates.
func (g *GradientBoosting) validate() error {
	if g.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive")
	}
	if len(g.Trees) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}
	cols := g.Schema.encodedColumns()
	for ti, t := range g.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if _, ok := cols[n.Feature]; !ok {
				return fmt.Errorf("tree %d node %d splits on unknown column %q", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d has invalid children", ti, ni)
			}
		}
	}
	return nil
}

// Evaluate returns the label and positive-class probability from one pass.
func (g *GradientBoosting) Evaluate(rec features.Record) (int, float64, error) {
	row, err := g.Schema.encode(rec)
	if err != nil {
		return 0, 0, err
	}
	raw := g.BaseScore
	for _, t := range g.Trees {
		raw += g.LearningRate * t.predict(row)
	}
	p := sigmoid(raw)
	return decide(p, g.Threshold), p, nil
}

// PredictLabel implements Model.
func (g *GradientBoosting) PredictLabel(rec features.Record) (int, error) {
	label, _, err := g.Evaluate(rec)
	return label, err
}

// PredictProbability implements Model.
func (g *GradientBoosting) PredictProbability(rec features.Record) (float64, error) {
	_, p, err := g.Evaluate(rec)
	return p, err
}

func (t Tree) predict(row map[string]float64) float64 {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}
