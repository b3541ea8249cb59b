package model

import (
	"fmt"
	"slices"
	"strconv"
)

// Sub-transformer kinds.
const (
	KindStandardScaler = "standard_scaler"
	KindOneHot         = "one_hot"
	KindPassthrough    = "passthrough"
)

// StepSpec is one fitted sub-transformer of a ColumnTransformer.
type StepSpec struct {
	Name          string      `json:"name"`
	Kind          string      `json:"kind"`
	Columns       []string    `json:"columns"`
	Mean          []float64   `json:"mean,omitempty"`
	Scale         []float64   `json:"scale,omitempty"`
	Categories    [][]float64 `json:"categories,omitempty"`
	HandleUnknown string      `json:"handle_unknown,omitempty"`
}

// ColumnTransformerSpec is the serialized form of a ColumnTransformer.
type ColumnTransformerSpec struct {
	InputColumns []string   `json:"input_columns"`
	Transformers []StepSpec `json:"transformers"`
}

// ColumnTransformer applies sub-transformers to column subsets and
// concatenates their outputs in declaration order.
type ColumnTransformer struct {
	inputs   []string
	steps    []step
	outNames []string
}

type step struct {
	spec  StepSpec
	index []int // input column positions
}

var _ Transformer = (*ColumnTransformer)(nil)

// NewColumnTransformer checks the spec is internally consistent.
func NewColumnTransformer(spec ColumnTransformerSpec) (*ColumnTransformer, error) {
	if len(spec.InputColumns) == 0 {
		return nil, fmt.Errorf("column transformer has no input columns")
	}
	pos := make(map[string]int, len(spec.InputColumns))
	for i, c := range spec.InputColumns {
		if _, dup := pos[c]; dup {
			return nil, fmt.Errorf("duplicate input column %q", c)
		}
		pos[c] = i
	}

	ct := &ColumnTransformer{inputs: slices.Clone(spec.InputColumns)}
	for _, s := range spec.Transformers {
		st := step{spec: s}
		for _, c := range s.Columns {
			i, ok := pos[c]
			if !ok {
				return nil, fmt.Errorf("transformer %q: column %q is not an input column", s.Name, c)
			}
			st.index = append(st.index, i)
		}

		switch s.Kind {
		case KindStandardScaler:
			if len(s.Mean) != len(s.Columns) || len(s.Scale) != len(s.Columns) {
				return nil, fmt.Errorf("transformer %q: mean/scale length must equal %d columns", s.Name, len(s.Columns))
			}
			for _, c := range s.Columns {
				ct.outNames = append(ct.outNames, s.Name+"__"+c)
			}
		case KindOneHot:
			if len(s.Categories) != len(s.Columns) {
				return nil, fmt.Errorf("transformer %q: categories length must equal %d columns", s.Name, len(s.Columns))
			}
			switch s.HandleUnknown {
			case "", "error", "ignore":
			default:
				return nil, fmt.Errorf("transformer %q: handle_unknown %q", s.Name, s.HandleUnknown)
			}
			for i, c := range s.Columns {
				for _, cat := range s.Categories[i] {
					ct.outNames = append(ct.outNames, s.Name+"__"+c+"_"+formatCategory(cat))
				}
			}
		case KindPassthrough:
			for _, c := range s.Columns {
				ct.outNames = append(ct.outNames, s.Name+"__"+c)
			}
		default:
			return nil, fmt.Errorf("transformer %q: unknown kind %q", s.Name, s.Kind)
		}
		ct.steps = append(ct.steps, st)
	}
	if len(ct.outNames) == 0 {
		return nil, fmt.Errorf("column transformer produces no features")
	}
	return ct, nil
}

func (ct *ColumnTransformer) InputColumns() []string    { return slices.Clone(ct.inputs) }
func (ct *ColumnTransformer) FeatureNamesOut() []string { return slices.Clone(ct.outNames) }

// Transform requires in.Columns to equal the fitted input columns exactly.
func (ct *ColumnTransformer) Transform(in Table) (Table, error) {
	if err := in.RequireColumns(ct.inputs); err != nil {
		return Table{}, err
	}

	out := Table{Columns: ct.FeatureNamesOut(), Rows: make([][]float64, 0, in.Len())}
	for r, row := range in.Rows {
		if len(row) != len(ct.inputs) {
			return Table{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrSchemaMismatch, r, len(row), len(ct.inputs))
		}
		vals := make([]float64, 0, len(ct.outNames))
		for _, st := range ct.steps {
			var err error
			vals, err = st.apply(vals, row)
			if err != nil {
				return Table{}, fmt.Errorf("row %d: %w", r, err)
			}
		}
		out.Rows = append(out.Rows, vals)
	}
	return out, nil
}

func (st step) apply(dst, row []float64) ([]float64, error) {
	s := st.spec
	switch s.Kind {
	case KindStandardScaler:
		for i, idx := range st.index {
			scale := s.Scale[i]
			if scale == 0 {
				scale = 1
			}
			dst = append(dst, (row[idx]-s.Mean[i])/scale)
		}
	case KindOneHot:
		for i, idx := range st.index {
			cats := s.Categories[i]
			hit := slices.Index(cats, row[idx])
			if hit < 0 && s.HandleUnknown != "ignore" {
				return nil, fmt.Errorf("transformer %q: unknown category %v in column %q", s.Name, row[idx], s.Columns[i])
			}
			for j := range cats {
				if j == hit {
					dst = append(dst, 1)
				} else {
					dst = append(dst, 0)
				}
			}
		}
	case KindPassthrough:
		for _, idx := range st.index {
			dst = append(dst, row[idx])
		}
	}
	return dst, nil
}

func formatCategory(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
