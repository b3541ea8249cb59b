package model

import (
	"fmt"
	"slices"
)

// LogisticSpec is the serialized form of a binary LogisticRegression.
type LogisticSpec struct {
	Classes      []int     `json:"classes"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
}

// LogisticRegression picks Classes[1] when the decision function is positive.
type LogisticRegression struct {
	spec LogisticSpec
}

var _ Classifier = (*LogisticRegression)(nil)

func NewLogisticRegression(spec LogisticSpec) (*LogisticRegression, error) {
	if len(spec.Classes) != 2 {
		return nil, fmt.Errorf("logistic regression needs exactly 2 classes, got %d", len(spec.Classes))
	}
	if len(spec.Coef) == 0 {
		return nil, fmt.Errorf("logistic regression has no coefficients")
	}
	if spec.FeatureNames != nil && len(spec.FeatureNames) != len(spec.Coef) {
		return nil, fmt.Errorf("logistic regression has %d feature names for %d coefficients", len(spec.FeatureNames), len(spec.Coef))
	}
	return &LogisticRegression{spec: spec}, nil
}

func (l *LogisticRegression) Classes() []int         { return slices.Clone(l.spec.Classes) }
func (l *LogisticRegression) FeatureNames() []string { return slices.Clone(l.spec.FeatureNames) }
func (l *LogisticRegression) NumFeatures() int       { return len(l.spec.Coef) }

func (l *LogisticRegression) Predict(in Table) ([]int, error) {
	if err := checkInput(in, len(l.spec.Coef), l.spec.FeatureNames); err != nil {
		return nil, err
	}
	labels := make([]int, 0, in.Len())
	for _, row := range in.Rows {
		z := l.spec.Intercept
		for i, w := range l.spec.Coef {
			z += w * row[i]
		}
		if z > 0 {
			labels = append(labels, l.spec.Classes[1])
		} else {
			labels = append(labels, l.spec.Classes[0])
		}
	}
	return labels, nil
}
