// Package artifacttest writes small, pinned artifact bundles for tests.
//
// The fixture forest has three trees voting on asymptomatic chest pain,
// reversible-defect thalassemia, and ST depression / vessel count. The form
// defaults predict Low Risk; HighRiskRecord predicts High Risk.
package artifacttest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/heartrisk/internal/model"
	"github.com/abhisek/heartrisk/internal/patient"
)

// PreprocessorDoc is the on-disk shape of preprocessor.json.
type PreprocessorDoc struct {
	FormatVersion string `json:"format_version"`
	Kind          string `json:"kind"`
	model.ColumnTransformerSpec
}

// ForestDoc is the on-disk shape of a random forest model.json.
type ForestDoc struct {
	FormatVersion string `json:"format_version"`
	Kind          string `json:"kind"`
	model.ForestSpec
}

// LogisticDoc is the on-disk shape of a logistic regression model.json.
type LogisticDoc struct {
	FormatVersion string `json:"format_version"`
	Kind          string `json:"kind"`
	model.LogisticSpec
}

// Bundle holds the documents to write. Raw entries replace the encoded
// document of the same file name; a nil Raw value omits the file.
type Bundle struct {
	Preprocessor PreprocessorDoc
	Model        any
	FeatureNames []string
	Checksums    bool
	Raw          map[string][]byte
}

// Default returns the pinned fixture bundle.
func Default() *Bundle {
	return &Bundle{
		Preprocessor: PreprocessorDoc{FormatVersion: "v1.0.0", Kind: "column_transformer", ColumnTransformerSpec: Preprocessor()},
		Model:        ForestDoc{FormatVersion: "v1.0.0", Kind: "random_forest", ForestSpec: Forest()},
		FeatureNames: FeatureNames(),
	}
}

var numericCols = []string{
	patient.ColAge, patient.ColRestingBloodPressure, patient.ColCholestoral,
	patient.ColMaxHeartRate, patient.ColOldpeak,
}

var categoricalCols = []string{
	patient.ColSex, patient.ColChestPainType, patient.ColFastingBloodSugar, patient.ColRestECG,
	patient.ColExerciseAngina, patient.ColSlope, patient.ColVessels, patient.ColThalassemia,
}

var categories = [][]float64{
	{0, 1}, {1, 2, 3, 4}, {0, 1}, {0, 1, 2}, {0, 1}, {1, 2, 3}, {0, 1, 2, 3}, {3, 6, 7},
}

// Preprocessor returns the fixture column transformer: scaled numerics then
// one-hot categoricals, 28 output features.
func Preprocessor() model.ColumnTransformerSpec {
	return model.ColumnTransformerSpec{
		InputColumns: patient.Columns(),
		Transformers: []model.StepSpec{
			{
				Name:    "num",
				Kind:    model.KindStandardScaler,
				Columns: numericCols,
				Mean:    []float64{54.4, 131.7, 246.7, 149.6, 1.04},
				Scale:   []float64{9.0, 17.6, 51.8, 22.9, 1.16},
			},
			{
				Name:          "cat",
				Kind:          model.KindOneHot,
				Columns:       categoricalCols,
				Categories:    categories,
				HandleUnknown: "ignore",
			},
		},
	}
}

// FeatureNames returns the transform's output names.
func FeatureNames() []string {
	var names []string
	for _, c := range numericCols {
		names = append(names, "num__"+c)
	}
	for i, c := range categoricalCols {
		for _, cat := range categories[i] {
			names = append(names, fmt.Sprintf("cat__%s_%g", c, cat))
		}
	}
	return names
}

func featureIndex(name string) int {
	for i, n := range FeatureNames() {
		if n == name {
			return i
		}
	}
	panic("artifacttest: unknown feature " + name)
}

// Forest returns the fixture classifier.
func Forest() model.ForestSpec {
	leaf := func(v0, v1 float64) model.Node {
		return model.Node{Left: -1, Right: -1, Value: []float64{v0, v1}}
	}
	return model.ForestSpec{
		Classes:      []int{0, 1},
		NFeatures:    len(FeatureNames()),
		FeatureNames: FeatureNames(),
		Trees: []model.Tree{
			{Nodes: []model.Node{
				{Feature: featureIndex("cat__chest_pain_type_4"), Threshold: 0.5, Left: 1, Right: 2},
				leaf(30, 5),
				leaf(5, 30),
			}},
			{Nodes: []model.Node{
				{Feature: featureIndex("cat__thalassemia_7"), Threshold: 0.5, Left: 1, Right: 2},
				leaf(25, 8),
				leaf(6, 27),
			}},
			{Nodes: []model.Node{
				{Feature: featureIndex("num__oldpeak"), Threshold: 1.0, Left: 1, Right: 4},
				{Feature: featureIndex("cat__vessels_colored_by_flourosopy_0"), Threshold: 0.5, Left: 2, Right: 3},
				leaf(10, 20),
				leaf(28, 4),
				leaf(3, 25),
			}},
		},
	}
}

// Logistic returns a logistic regression over the same features that flags
// asymptomatic chest pain.
func Logistic() LogisticDoc {
	coef := make([]float64, len(FeatureNames()))
	coef[featureIndex("cat__chest_pain_type_4")] = 2
	return LogisticDoc{
		FormatVersion: "v1.0.0",
		Kind:          "logistic_regression",
		LogisticSpec: model.LogisticSpec{
			Classes:      []int{0, 1},
			FeatureNames: FeatureNames(),
			Coef:         coef,
			Intercept:    -1,
		},
	}
}

// HighRiskRecord returns a record the fixture forest labels 1.
func HighRiskRecord() patient.Record {
	r := patient.Default()
	r.ChestPain = patient.ChestPainAsymptomatic
	r.Thalassemia = patient.ThalReversibleDefect
	r.Oldpeak = 4.0
	r.Vessels = patient.Vessels2
	return r
}

// Write writes the bundle into a fresh temp directory and returns its path.
func (b *Bundle) Write(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string][]byte{
		"preprocessor.json":  mustJSON(t, b.Preprocessor),
		"model.json":         mustJSON(t, b.Model),
		"feature_names.json": mustJSON(t, b.FeatureNames),
	}
	for name, raw := range b.Raw {
		if raw == nil {
			delete(files, name)
			continue
		}
		files[name] = raw
	}

	var sums strings.Builder
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		fmt.Fprintf(&sums, "%s  %s\n", sha256Hex(data), name)
	}
	if b.Checksums {
		if err := os.WriteFile(filepath.Join(dir, "checksums.txt"), []byte(sums.String()), 0o644); err != nil {
			t.Fatalf("write checksums: %v", err)
		}
	}
	return dir
}

// WriteDefault writes the default fixture bundle.
func WriteDefault(t testing.TB) string {
	t.Helper()
	return Default().Write(t)
}

func mustJSON(t testing.TB, v any) []byte {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return data
}
