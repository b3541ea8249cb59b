// Package model holds the tabular types and the fitted preprocessing and
// classification primitives that artifact bundles decode into.
package model

import (
	"errors"
	"fmt"
	"slices"
)

// ErrSchemaMismatch is returned when a table's columns are not the ones a
// transform or classifier was fitted against.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Table is a dense numeric table with named columns.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// NewTable builds a table and checks every row has one value per column.
func NewTable(columns []string, rows ...[]float64) (Table, error) {
	for i, r := range rows {
		if len(r) != len(columns) {
			return Table{}, fmt.Errorf("row %d has %d values, want %d", i, len(r), len(columns))
		}
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// Width returns the number of columns.
func (t Table) Width() int { return len(t.Columns) }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Row returns row i.
func (t Table) Row(i int) []float64 { return t.Rows[i] }

// WithColumns returns the same rows under new column names. The count must match.
func (t Table) WithColumns(names []string) (Table, error) {
	if len(names) != len(t.Columns) {
		return Table{}, fmt.Errorf("%w: %d names for %d columns", ErrSchemaMismatch, len(names), len(t.Columns))
	}
	return Table{Columns: slices.Clone(names), Rows: t.Rows}, nil
}

// RequireColumns checks t's columns equal want exactly, names and order.
func (t Table) RequireColumns(want []string) error {
	if len(t.Columns) != len(want) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(t.Columns), len(want))
	}
	for i := range want {
		if t.Columns[i] != want[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, t.Columns[i], want[i])
		}
	}
	return nil
}

// Transformer maps a raw table to the representation a classifier expects.
type Transformer interface {
	Transform(in Table) (Table, error)
	InputColumns() []string
	FeatureNamesOut() []string
}

// Classifier returns one label per input row.
type Classifier interface {
	Predict(in Table) ([]int, error)
	Classes() []int
}
