package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

func mustInt64(t *testing.T, name string, data []int64, nulls []bool) *columnar.Int64Column {
	t.Helper()
	c, err := columnar.NewInt64(name, data, nulls)
	require.NoError(t, err)
	return c
}

func mustFloat64(t *testing.T, name string, data []float64, nulls []bool) *columnar.Float64Column {
	t.Helper()
	c, err := columnar.NewFloat64(name, data, nulls)
	require.NoError(t, err)
	return c
}

func mustText(t *testing.T, name string, data []string, nulls []bool) *columnar.TextColumn {
	t.Helper()
	c, err := columnar.NewText(name, data, nulls)
	require.NoError(t, err)
	return c
}

func mustCategorical(t *testing.T, name string, data []string, nulls []bool) *columnar.CategoricalColumn {
	t.Helper()
	c, err := columnar.NewCategorical(name, data, nulls)
	require.NoError(t, err)
	return c
}

func mustTable(t *testing.T, cols ...columnar.Column) *Table {
	t.Helper()
	tbl, err := NewFromColumns(cols...)
	require.NoError(t, err)
	return tbl
}

// cells returns every row of tbl as plain Go values
func cells(tbl *Table) [][]any {
	var out [][]any
	it := tbl.Rows()
	for it.Next() {
		row := it.Row()
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v.Any()
		}
		out = append(out, vals)
	}
	return out
}

func sampleTable(t *testing.T) *Table {
	return mustTable(t,
		mustInt64(t, "id", []int64{1, 2, 3, 4, 5}, nil),
		mustText(t, "name", []string{"a", "b", "c", "d", "e"}, []bool{false, false, true, false, false}),
		mustFloat64(t, "score", []float64{1.5, 2.5, 3.5, 4.5, 5.5}, nil),
	)
}

func TestNewFromColumns_Validation(t *testing.T) {
	_, err := NewFromColumns()
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = NewFromColumns(
		mustInt64(t, "a", []int64{1, 2}, nil),
		mustInt64(t, "b", []int64{1}, nil),
	)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = NewFromColumns(
		mustInt64(t, "a", []int64{1}, nil),
		mustInt64(t, "A", []int64{2}, nil),
	)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAddColumn_ReplacesInPlace(t *testing.T) {
	tbl := New(2)
	require.NoError(t, tbl.AddColumn(mustInt64(t, "a", []int64{1, 2}, nil)))
	require.NoError(t, tbl.AddColumn(mustInt64(t, "b", []int64{3, 4}, nil)))
	require.NoError(t, tbl.AddColumn(mustText(t, "A", []string{"x", "y"}, nil)))

	assert.Equal(t, []string{"A", "b"}, tbl.ColumnNames())
	col, err := tbl.Column("a")
	require.NoError(t, err)
	assert.Equal(t, columnar.Text, col.DataType())

	err = tbl.AddColumn(mustInt64(t, "c", []int64{1}, nil))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRemoveColumn(t *testing.T) {
	tbl := sampleTable(t)
	require.NoError(t, tbl.RemoveColumn("NAME"))

	assert.Equal(t, []string{"id", "score"}, tbl.ColumnNames())
	assert.False(t, tbl.ContainsColumn("name"))
	col, err := tbl.ColumnAt(1)
	require.NoError(t, err)
	assert.Equal(t, "score", col.Name())
	_, err = tbl.Column("score")
	assert.NoError(t, err)

	err = tbl.RemoveColumn("missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestTypedAccessors(t *testing.T) {
	tbl := sampleTable(t)

	ids, err := tbl.Int64("id")
	require.NoError(t, err)
	assert.Equal(t, 5, ids.Len())

	_, err = tbl.Float64("id")
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, err = tbl.Text("missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = tbl.ColumnAt(3)
	assert.True(t, errors.IsType(err, errors.ErrorTypeOutOfRange))

	text, err := ColumnAs[*columnar.TextColumn](tbl, "name")
	require.NoError(t, err)
	assert.Equal(t, 1, text.NullCount())
}

func TestFilter(t *testing.T) {
	tbl := sampleTable(t)
	ids, err := tbl.Int64("id")
	require.NoError(t, err)

	out, err := tbl.Filter(ids.Gt(2))
	require.NoError(t, err)

	assert.Equal(t, 3, out.RowCount())
	assert.Equal(t, [][]any{
		{int64(3), nil, 3.5},
		{int64(4), "d", 4.5},
		{int64(5), "e", 5.5},
	}, cells(out))

	_, err = tbl.Filter(columnar.Mask{true})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestSelect(t *testing.T) {
	tbl := sampleTable(t)

	out, err := tbl.Select("score", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"score", "id"}, out.ColumnNames())
	assert.Equal(t, 5, out.RowCount())

	_, err = tbl.Select("id", "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = tbl.Select("id", "ID")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestSelect_AllColumnsIsValueIdentical(t *testing.T) {
	tbl := sampleTable(t)

	out, err := tbl.Select(tbl.ColumnNames()...)
	require.NoError(t, err)
	assert.Equal(t, tbl.ColumnNames(), out.ColumnNames())
	assert.Equal(t, tbl.RowCount(), out.RowCount())
	assert.Equal(t, cells(tbl), cells(out))
}

func TestGatherRows(t *testing.T) {
	tbl := sampleTable(t)

	out, err := tbl.GatherRows([]int{4, -1, 0})
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{int64(5), "e", 5.5},
		{nil, nil, nil},
		{int64(1), "a", 1.5},
	}, cells(out))

	_, err = tbl.GatherRows([]int{5})
	assert.True(t, errors.IsType(err, errors.ErrorTypeOutOfRange))
}

func TestHeadTail(t *testing.T) {
	tbl := sampleTable(t)

	all := tbl.Head(100)
	assert.Equal(t, 5, all.RowCount())
	assert.Equal(t, cells(tbl), cells(all))

	head := tbl.Head(2)
	assert.Equal(t, [][]any{{int64(1), "a", 1.5}, {int64(2), "b", 2.5}}, cells(head))

	tail := tbl.Tail(1)
	assert.Equal(t, [][]any{{int64(5), "e", 5.5}}, cells(tail))

	assert.Equal(t, 0, tbl.Head(-3).RowCount())
	assert.Equal(t, 5, tbl.Tail(9).RowCount())
}

func TestConcat(t *testing.T) {
	a := mustTable(t,
		mustInt64(t, "id", []int64{1}, nil),
		mustCategorical(t, "c", []string{"x"}, nil),
	)
	b := mustTable(t,
		mustInt64(t, "id", []int64{2, 3}, []bool{false, true}),
		mustCategorical(t, "c", []string{"y", "x"}, nil),
	)

	out, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{int64(1), "x"},
		{int64(2), "y"},
		{nil, "x"},
	}, cells(out))

	cat, err := out.Categorical("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cat.Categories())

	c := mustTable(t, mustInt64(t, "other", []int64{1}, nil), mustInt64(t, "c", []int64{1}, nil))
	_, err = Concat(a, c)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	d := mustTable(t, mustFloat64(t, "id", []float64{1}, nil), mustCategorical(t, "c", []string{"x"}, nil))
	_, err = Concat(a, d)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestObserverReceivesEvents(t *testing.T) {
	var events []Event
	tbl := sampleTable(t).WithObserver(ObserverFunc(func(ev Event) {
		events = append(events, ev)
	}))

	head := tbl.Head(2)
	_, err := head.Select("id")
	require.NoError(t, err)
	_, err = tbl.Select("missing")
	require.Error(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, OpFilter, events[0].Op)
	assert.Equal(t, 5, events[0].InputRows)
	assert.Equal(t, 2, events[0].OutputRows)
	assert.Equal(t, OpSelect, events[1].Op)
	assert.Equal(t, 1, events[1].Columns)
	assert.Error(t, events[2].Err)
	assert.Equal(t, 0, events[2].OutputRows)
}

func TestMultiObserver(t *testing.T) {
	var a, b int
	obs := MultiObserver{
		ObserverFunc(func(Event) { a++ }),
		nil,
		ObserverFunc(func(Event) { b++ }),
	}
	obs.OnOperation(Event{Op: OpFilter})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
