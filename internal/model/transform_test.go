package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransformer(t *testing.T) *ColumnTransformer {
	t.Helper()
	ct, err := NewColumnTransformer(ColumnTransformerSpec{
		InputColumns: []string{"age", "sex", "oldpeak"},
		Transformers: []StepSpec{
			{Name: "num", Kind: KindStandardScaler, Columns: []string{"age"}, Mean: []float64{50}, Scale: []float64{10}},
			{Name: "cat", Kind: KindOneHot, Columns: []string{"sex"}, Categories: [][]float64{{0, 1}}, HandleUnknown: "ignore"},
			{Name: "remainder", Kind: KindPassthrough, Columns: []string{"oldpeak"}},
		},
	})
	require.NoError(t, err)
	return ct
}

func TestColumnTransformerNames(t *testing.T) {
	ct := testTransformer(t)
	want := []string{"num__age", "cat__sex_0", "cat__sex_1", "remainder__oldpeak"}
	if diff := cmp.Diff(want, ct.FeatureNamesOut()); diff != "" {
		t.Errorf("FeatureNamesOut() mismatch (-want +got):\n%s", diff)
	}
}

func TestColumnTransformerTransform(t *testing.T) {
	ct := testTransformer(t)
	in, err := NewTable([]string{"age", "sex", "oldpeak"}, []float64{70, 1, 2.5}, []float64{50, 7, 0})
	require.NoError(t, err)

	out, err := ct.Transform(in)
	require.NoError(t, err)

	want := [][]float64{
		{2, 0, 1, 2.5},
		{0, 0, 0, 0}, // unknown sex category is ignored
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Errorf("Transform() rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ct.FeatureNamesOut(), out.Columns)
}

func TestColumnTransformerRejectsReorderedColumns(t *testing.T) {
	ct := testTransformer(t)
	in, err := NewTable([]string{"sex", "age", "oldpeak"}, []float64{1, 70, 2.5})
	require.NoError(t, err)

	_, err = ct.Transform(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaMismatch))
}

func TestColumnTransformerRejectsUnknownCategory(t *testing.T) {
	ct, err := NewColumnTransformer(ColumnTransformerSpec{
		InputColumns: []string{"thal"},
		Transformers: []StepSpec{
			{Name: "cat", Kind: KindOneHot, Columns: []string{"thal"}, Categories: [][]float64{{3, 6, 7}}},
		},
	})
	require.NoError(t, err)

	in, _ := NewTable([]string{"thal"}, []float64{4})
	_, err = ct.Transform(in)
	assert.ErrorContains(t, err, "unknown category")
}

func TestColumnTransformerZeroScale(t *testing.T) {
	ct, err := NewColumnTransformer(ColumnTransformerSpec{
		InputColumns: []string{"x"},
		Transformers: []StepSpec{
			{Name: "num", Kind: KindStandardScaler, Columns: []string{"x"}, Mean: []float64{1}, Scale: []float64{0}},
		},
	})
	require.NoError(t, err)

	in, _ := NewTable([]string{"x"}, []float64{4})
	out, err := ct.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, out.Row(0))
}

func TestNewColumnTransformerErrors(t *testing.T) {
	tests := []struct {
		name string
		spec ColumnTransformerSpec
		want string
	}{
		{"no inputs", ColumnTransformerSpec{}, "no input columns"},
		{"duplicate input", ColumnTransformerSpec{InputColumns: []string{"a", "a"}}, "duplicate"},
		{"unknown column", ColumnTransformerSpec{
			InputColumns: []string{"a"},
			Transformers: []StepSpec{{Name: "p", Kind: KindPassthrough, Columns: []string{"b"}}},
		}, "not an input column"},
		{"scaler length", ColumnTransformerSpec{
			InputColumns: []string{"a"},
			Transformers: []StepSpec{{Name: "n", Kind: KindStandardScaler, Columns: []string{"a"}}},
		}, "mean/scale"},
		{"unknown kind", ColumnTransformerSpec{
			InputColumns: []string{"a"},
			Transformers: []StepSpec{{Name: "x", Kind: "pca", Columns: []string{"a"}}},
		}, "unknown kind"},
		{"no output", ColumnTransformerSpec{InputColumns: []string{"a"}}, "no features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewColumnTransformer(tt.spec)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
