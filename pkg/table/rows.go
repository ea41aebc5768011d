package table

import (
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Schema names and types the columns a loader produces
type Schema struct {
	Names []string
	Types []columnar.DataType
}

// FromRows builds a table from row-major raw values. Each row holds one cell
// per schema column; a nil cell is null. Text columns are stored as
// categorical when opts.CategoricalThreshold says so.
func FromRows(schema Schema, rows [][]any, opts columnar.LoadOptions) (*Table, error) {
	if len(schema.Names) != len(schema.Types) {
		return nil, errors.New(errors.ErrorTypeValidation, "schema names and types differ in length").
			WithDetail("names", len(schema.Names)).
			WithDetail("types", len(schema.Types))
	}
	if len(schema.Names) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "schema has no columns")
	}

	for r, row := range rows {
		if len(row) != len(schema.Names) {
			return nil, errors.New(errors.ErrorTypeValidation, "row width does not match schema").
				WithDetail("row", r).
				WithDetail("width", len(row)).
				WithDetail("columns", len(schema.Names))
		}
	}

	cols := make([]columnar.Column, len(schema.Names))
	cells := make([]any, len(rows))
	for c, name := range schema.Names {
		for r, row := range rows {
			cells[r] = row[c]
		}
		col, err := columnar.BuildColumnWithOptions(name, schema.Types[c], cells, opts)
		if err != nil {
			return nil, err
		}
		cols[c] = col
	}
	return NewFromColumns(cols...)
}

// Schema returns the names and types of the table's columns
func (t *Table) Schema() Schema {
	s := Schema{
		Names: make([]string, len(t.columns)),
		Types: make([]columnar.DataType, len(t.columns)),
	}
	for i, c := range t.columns {
		s.Names[i] = c.Name()
		s.Types[i] = c.DataType()
	}
	return s
}

// RowIterator provides sequential read-only access to rows for exporters
type RowIterator struct {
	table  *Table
	index  int
	buffer []columnar.Value
}

// Rows returns an iterator positioned before the first row
func (t *Table) Rows() *RowIterator {
	return &RowIterator{
		table:  t,
		index:  -1,
		buffer: make([]columnar.Value, len(t.columns)),
	}
}

// Next advances to the next row
func (it *RowIterator) Next() bool {
	it.index++
	return it.index < it.table.rowCount
}

// Index returns the current row number
func (it *RowIterator) Index() int { return it.index }

// Row returns the cells of the current row in column order. The slice is
// reused by the next call.
func (it *RowIterator) Row() []columnar.Value {
	for i, c := range it.table.columns {
		it.buffer[i] = c.Value(it.index)
	}
	return it.buffer
}
