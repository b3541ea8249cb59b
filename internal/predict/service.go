// Package predict runs one patient record through the encode, transform and
// classify steps.
package predict

import (
	"fmt"
	"slices"

	"github.com/abhisek/heartrisk/internal/artifact"
	"github.com/abhisek/heartrisk/internal/model"
	"github.com/abhisek/heartrisk/internal/patient"
)

// Predictor is what the form and the CLI depend on.
type Predictor interface {
	Evaluate(rec patient.Record) (*Outcome, error)
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	Risk  Risk
	Label int
	Row   patient.Row
}

// Service holds the loaded transform and classifier. It is immutable after
// construction and safe to share.
type Service struct {
	transform    model.Transformer
	classifier   model.Classifier
	featureNames []string
}

var _ Predictor = (*Service)(nil)

// New builds a Service from already-loaded artifacts.
func New(transform model.Transformer, classifier model.Classifier, featureNames []string) *Service {
	return &Service{
		transform:    transform,
		classifier:   classifier,
		featureNames: slices.Clone(featureNames),
	}
}

// FromBundle builds a Service from a loaded artifact bundle.
func FromBundle(b *artifact.Bundle) *Service {
	return New(b.Transform, b.Classifier, b.FeatureNames)
}

// Predict returns the risk for rec.
func (s *Service) Predict(rec patient.Record) (Risk, error) {
	out, err := s.Evaluate(rec)
	if err != nil {
		return LowRisk, err
	}
	return out.Risk, nil
}

// Evaluate encodes rec, assembles a single-row table in canonical column
// order, transforms it, relabels the result with the loaded feature names
// and takes the classifier's first label.
func (s *Service) Evaluate(rec patient.Record) (*Outcome, error) {
	row := rec.Encode()
	in, err := model.NewTable(patient.Columns(), row.Values())
	if err != nil {
		return nil, err
	}

	transformed, err := s.transform.Transform(in)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	transformed, err = transformed.WithColumns(s.featureNames)
	if err != nil {
		return nil, fmt.Errorf("align transformed features: %w", err)
	}

	labels, err := s.classifier.Predict(transformed)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("predict: classifier returned no labels")
	}

	return &Outcome{
		Risk:  RiskFromLabel(labels[0]),
		Label: labels[0],
		Row:   row,
	}, nil
}
