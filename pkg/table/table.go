// Package table implements the tabula Table: an ordered set of uniquely
// named, equal-length columns with filter, projection, gather, join and
// grouping operations that always produce new tables.
package table

import (
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// Table is an ordered collection of same-length columns. Column names are
// unique ignoring case. Only the column set is mutable (AddColumn,
// RemoveColumn); row transforms return new tables.
type Table struct {
	columns  []columnar.Column
	index    map[string]int
	rowCount int
	observer Observer
}

// New creates an empty table whose columns must all have rowCount rows
func New(rowCount int) *Table {
	if rowCount < 0 {
		panic(errors.New(errors.ErrorTypeValidation, "row count must not be negative").
			WithDetail("row_count", rowCount))
	}
	return &Table{
		index:    make(map[string]int),
		rowCount: rowCount,
		observer: nopObserver{},
	}
}

// NewFromColumns builds a table from columns in order. The row count is taken
// from the first column; every column must match it and names must be
// unique.
func NewFromColumns(cols ...columnar.Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "at least one column is required")
	}
	if cols[0] == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "column is nil").
			WithDetail("position", 0)
	}

	t := New(cols[0].Len())
	for i, c := range cols {
		if c == nil {
			return nil, errors.New(errors.ErrorTypeValidation, "column is nil").
				WithDetail("position", i)
		}
		if t.ContainsColumn(c.Name()) {
			return nil, errors.New(errors.ErrorTypeValidation, "duplicate column name").
				WithDetail("column", c.Name())
		}
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WithObserver sets the observer notified after each row-producing
// operation. Tables derived from t inherit it. A nil observer disables
// notification.
func (t *Table) WithObserver(obs Observer) *Table {
	if obs == nil {
		obs = nopObserver{}
	}
	t.observer = obs
	return t
}

// Observer returns the table's observer
func (t *Table) Observer() Observer { return t.observer }

// RowCount returns the number of rows
func (t *Table) RowCount() int { return t.rowCount }

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int { return len(t.columns) }

// AddColumn appends col, or replaces the column of the same name in place.
// The column length must equal RowCount.
func (t *Table) AddColumn(col columnar.Column) error {
	if col == nil {
		return errors.New(errors.ErrorTypeValidation, "column is nil")
	}
	if col.Name() == "" {
		return errors.New(errors.ErrorTypeValidation, "column name must not be empty")
	}
	if col.Len() != t.rowCount {
		return errors.New(errors.ErrorTypeValidation, "column length does not match table row count").
			WithDetail("column", col.Name()).
			WithDetail("length", col.Len()).
			WithDetail("row_count", t.rowCount)
	}

	key := strings.ToLower(col.Name())
	if pos, ok := t.index[key]; ok {
		t.columns[pos] = col
		return nil
	}
	t.index[key] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// RemoveColumn drops the named column
func (t *Table) RemoveColumn(name string) error {
	key := strings.ToLower(name)
	pos, ok := t.index[key]
	if !ok {
		return notFound(name)
	}
	t.columns = append(t.columns[:pos], t.columns[pos+1:]...)
	delete(t.index, key)
	for i := pos; i < len(t.columns); i++ {
		t.index[strings.ToLower(t.columns[i].Name())] = i
	}
	return nil
}

// ContainsColumn reports whether a column with the name exists
func (t *Table) ContainsColumn(name string) bool {
	_, ok := t.index[strings.ToLower(name)]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (columnar.Column, error) {
	pos, ok := t.index[strings.ToLower(name)]
	if !ok {
		return nil, notFound(name)
	}
	return t.columns[pos], nil
}

// ColumnAt returns the column at position i
func (t *Table) ColumnAt(i int) (columnar.Column, error) {
	if i < 0 || i >= len(t.columns) {
		return nil, errors.New(errors.ErrorTypeOutOfRange, "column position out of range").
			WithDetail("position", i).
			WithDetail("columns", len(t.columns))
	}
	return t.columns[i], nil
}

// Columns returns the columns in order. The slice is a copy.
func (t *Table) Columns() []columnar.Column {
	return append([]columnar.Column(nil), t.columns...)
}

// ColumnNames returns the column names in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// ColumnAs returns the named column as concrete type C
func ColumnAs[C columnar.Column](t *Table, name string) (C, error) {
	var zero C
	col, err := t.Column(name)
	if err != nil {
		return zero, err
	}
	typed, ok := col.(C)
	if !ok {
		return zero, errors.Newf(errors.ErrorTypeTypeMismatch, "column is not %T", zero).
			WithDetail("column", col.Name()).
			WithDetail("type", col.DataType().String())
	}
	return typed, nil
}

// Int64 returns the named int64 column
func (t *Table) Int64(name string) (*columnar.Int64Column, error) {
	return ColumnAs[*columnar.Int64Column](t, name)
}

// Int32 returns the named int32 column
func (t *Table) Int32(name string) (*columnar.Int32Column, error) {
	return ColumnAs[*columnar.Int32Column](t, name)
}

// Float64 returns the named float64 column
func (t *Table) Float64(name string) (*columnar.Float64Column, error) {
	return ColumnAs[*columnar.Float64Column](t, name)
}

// Float32 returns the named float32 column
func (t *Table) Float32(name string) (*columnar.Float32Column, error) {
	return ColumnAs[*columnar.Float32Column](t, name)
}

// Bool returns the named boolean column
func (t *Table) Bool(name string) (*columnar.BoolColumn, error) {
	return ColumnAs[*columnar.BoolColumn](t, name)
}

// Date returns the named date column
func (t *Table) Date(name string) (*columnar.DateColumn, error) {
	return ColumnAs[*columnar.DateColumn](t, name)
}

// Text returns the named text column
func (t *Table) Text(name string) (*columnar.TextColumn, error) {
	return ColumnAs[*columnar.TextColumn](t, name)
}

// Categorical returns the named categorical column
func (t *Table) Categorical(name string) (*columnar.CategoricalColumn, error) {
	return ColumnAs[*columnar.CategoricalColumn](t, name)
}

// Filter keeps the rows where mask is true
func (t *Table) Filter(mask columnar.Mask) (*Table, error) {
	start := time.Now()
	out, err := t.filter(mask)
	t.emit(Event{Op: OpFilter, Start: start, InputRows: t.rowCount}, out, err)
	return out, err
}

func (t *Table) filter(mask columnar.Mask) (*Table, error) {
	if len(mask) != t.rowCount {
		return nil, errors.New(errors.ErrorTypeValidation, "mask length does not match table row count").
			WithDetail("mask_length", len(mask)).
			WithDetail("row_count", t.rowCount)
	}

	out := t.derive(vector.CountTrue(mask))
	for _, c := range t.columns {
		fc, err := c.Filter(mask)
		if err != nil {
			return nil, err
		}
		out.appendColumn(fc)
	}
	return out, nil
}

// Select projects the named columns, in the given order, into a new table
func (t *Table) Select(names ...string) (*Table, error) {
	start := time.Now()
	out, err := t.selectColumns(names)
	t.emit(Event{Op: OpSelect, Start: start, InputRows: t.rowCount}, out, err)
	return out, err
}

func (t *Table) selectColumns(names []string) (*Table, error) {
	out := t.derive(t.rowCount)
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if out.ContainsColumn(name) {
			return nil, errors.New(errors.ErrorTypeValidation, "column selected more than once").
				WithDetail("column", name)
		}
		out.appendColumn(col)
	}
	return out, nil
}

// GatherRows builds a table whose row k is source row indices[k]; an index
// of -1 produces a null row.
func (t *Table) GatherRows(indices []int) (*Table, error) {
	start := time.Now()
	out, err := t.gatherRows(indices)
	t.emit(Event{Op: OpGatherRows, Start: start, InputRows: t.rowCount}, out, err)
	return out, err
}

func (t *Table) gatherRows(indices []int) (*Table, error) {
	out := t.derive(len(indices))
	for _, c := range t.columns {
		gc, err := columnar.Gather(c, indices)
		if err != nil {
			return nil, err
		}
		out.appendColumn(gc)
	}
	return out, nil
}

// Head returns the first n rows; n is clamped to the row count
func (t *Table) Head(n int) *Table {
	n = clampRows(n, t.rowCount)
	mask := make(columnar.Mask, t.rowCount)
	for i := 0; i < n; i++ {
		mask[i] = true
	}
	return t.mustFilter(mask)
}

// Tail returns the last n rows; n is clamped to the row count
func (t *Table) Tail(n int) *Table {
	n = clampRows(n, t.rowCount)
	mask := make(columnar.Mask, t.rowCount)
	for i := t.rowCount - n; i < t.rowCount; i++ {
		mask[i] = true
	}
	return t.mustFilter(mask)
}

func (t *Table) mustFilter(mask columnar.Mask) *Table {
	out, err := t.Filter(mask)
	if err != nil {
		// the mask is always built with RowCount entries
		panic(err)
	}
	return out
}

// Concat stacks tables vertically. Every part must have the same column
// names in the same order; columns are concatenated type-correctly. The
// result inherits the first part's observer.
func Concat(parts ...*Table) (*Table, error) {
	if len(parts) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "concat requires at least one table")
	}
	first := parts[0]
	start := time.Now()
	out, err := concatTables(parts)
	first.emit(Event{Op: OpConcat, Start: start, InputRows: totalRows(parts)}, out, err)
	return out, err
}

func concatTables(parts []*Table) (*Table, error) {
	first := parts[0]
	for _, p := range parts[1:] {
		if p.ColumnCount() != first.ColumnCount() {
			return nil, errors.New(errors.ErrorTypeValidation, "tables have different column counts").
				WithDetail("expected", first.ColumnCount()).
				WithDetail("actual", p.ColumnCount())
		}
		for i, c := range p.columns {
			if !strings.EqualFold(c.Name(), first.columns[i].Name()) {
				return nil, errors.New(errors.ErrorTypeValidation, "tables have different columns").
					WithDetail("position", i).
					WithDetail("expected", first.columns[i].Name()).
					WithDetail("actual", c.Name())
			}
		}
	}

	out := first.derive(totalRows(parts))
	segments := make([]columnar.Column, len(parts))
	for i, c := range first.columns {
		for k, p := range parts {
			segments[k] = p.columns[i]
		}
		merged, err := columnar.Concat(c.Name(), segments)
		if err != nil {
			return nil, err
		}
		out.appendColumn(merged)
	}
	return out, nil
}

// derive creates an empty table with the observer of t
func (t *Table) derive(rowCount int) *Table {
	out := New(rowCount)
	out.observer = t.observer
	return out
}

// appendColumn adds a column already known to be valid and uniquely named
func (t *Table) appendColumn(col columnar.Column) {
	t.index[strings.ToLower(col.Name())] = len(t.columns)
	t.columns = append(t.columns, col)
}

func (t *Table) emit(ev Event, out *Table, err error) {
	ev.Duration = time.Since(ev.Start)
	ev.Err = err
	if out != nil && err == nil {
		ev.OutputRows = out.rowCount
		ev.Columns = len(out.columns)
	}
	t.observer.OnOperation(ev)
}

func notFound(name string) *errors.Error {
	return errors.New(errors.ErrorTypeNotFound, "column not found").
		WithDetail("column", name)
}

func clampRows(n, rows int) int {
	if n < 0 {
		return 0
	}
	if n > rows {
		return rows
	}
	return n
}

func totalRows(parts []*Table) int {
	n := 0
	for _, p := range parts {
		n += p.rowCount
	}
	return n
}
