package model

import (
	"fmt"
	"slices"
)

// Node is one node of a fitted decision tree. Leaves have Left == -1 and
// carry per-class weights in Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

// Tree is a fitted decision tree; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// ForestSpec is the serialized form of a RandomForest.
type ForestSpec struct {
	Classes      []int    `json:"classes"`
	NFeatures    int      `json:"n_features"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Trees        []Tree   `json:"trees"`
}

// RandomForest averages per-tree class probabilities.
type RandomForest struct {
	spec ForestSpec
}

var _ Classifier = (*RandomForest)(nil)

// NewRandomForest checks every tree is well formed: child indices in range,
// split features below NFeatures, leaf values one per class.
func NewRandomForest(spec ForestSpec) (*RandomForest, error) {
	if len(spec.Classes) < 2 {
		return nil, fmt.Errorf("random forest needs at least 2 classes, got %d", len(spec.Classes))
	}
	if spec.NFeatures <= 0 {
		return nil, fmt.Errorf("random forest n_features must be positive")
	}
	if spec.FeatureNames != nil && len(spec.FeatureNames) != spec.NFeatures {
		return nil, fmt.Errorf("random forest has %d feature names for %d features", len(spec.FeatureNames), spec.NFeatures)
	}
	if len(spec.Trees) == 0 {
		return nil, fmt.Errorf("random forest has no trees")
	}
	for ti, tree := range spec.Trees {
		if err := checkTree(tree, spec.NFeatures, len(spec.Classes)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
	}
	return &RandomForest{spec: spec}, nil
}

func checkTree(tree Tree, nFeatures, nClasses int) error {
	n := len(tree.Nodes)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, nd := range tree.Nodes {
		if nd.Left == -1 {
			if len(nd.Value) != nClasses {
				return fmt.Errorf("leaf %d has %d values, want %d", i, len(nd.Value), nClasses)
			}
			continue
		}
		if nd.Left <= i || nd.Left >= n || nd.Right <= i || nd.Right >= n {
			return fmt.Errorf("node %d has children out of range", i)
		}
		if nd.Feature < 0 || nd.Feature >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, nd.Feature, nFeatures)
		}
	}
	return nil
}

func (f *RandomForest) Classes() []int { return slices.Clone(f.spec.Classes) }

// FeatureNames returns the names the forest was fitted with, or nil.
func (f *RandomForest) FeatureNames() []string { return slices.Clone(f.spec.FeatureNames) }

// NumFeatures returns the expected input width.
func (f *RandomForest) NumFeatures() int { return f.spec.NFeatures }

func (f *RandomForest) Predict(in Table) ([]int, error) {
	if err := checkInput(in, f.spec.NFeatures, f.spec.FeatureNames); err != nil {
		return nil, err
	}
	labels := make([]int, 0, in.Len())
	for _, row := range in.Rows {
		proba := make([]float64, len(f.spec.Classes))
		for _, tree := range f.spec.Trees {
			leaf := tree.leaf(row)
			var total float64
			for _, v := range leaf.Value {
				total += v
			}
			if total == 0 {
				continue
			}
			for c, v := range leaf.Value {
				proba[c] += v / total
			}
		}
		labels = append(labels, f.spec.Classes[argmax(proba)])
	}
	return labels, nil
}

// leaf walks from the root; x <= threshold goes left.
func (t Tree) leaf(row []float64) Node {
	i := 0
	for {
		nd := t.Nodes[i]
		if nd.Left == -1 {
			return nd
		}
		if row[nd.Feature] <= nd.Threshold {
			i = nd.Left
		} else {
			i = nd.Right
		}
	}
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func checkInput(in Table, nFeatures int, names []string) error {
	if names != nil {
		if err := in.RequireColumns(names); err != nil {
			return err
		}
	} else if in.Width() != nFeatures {
		return fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, in.Width(), nFeatures)
	}
	for r, row := range in.Rows {
		if len(row) != nFeatures {
			return fmt.Errorf("%w: row %d has %d values, want %d", ErrSchemaMismatch, r, len(row), nFeatures)
		}
	}
	return nil
}
