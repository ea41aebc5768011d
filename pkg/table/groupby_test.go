package table

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

func salesTable(t *testing.T) *Table {
	return mustTable(t,
		mustCategorical(t, "country", []string{"ES", "FR", "ES", "", "FR"}, []bool{false, false, false, true, false}),
		mustFloat64(t, "sales", []float64{10, 20, 30, 5, 0}, []bool{false, false, false, false, true}),
		mustInt64(t, "year", []int64{2020, 2020, 2021, 2021, 2020}, nil),
	)
}

func TestGroupBy_AggSum(t *testing.T) {
	tbl := mustTable(t,
		mustText(t, "country", []string{"ES", "FR", "ES"}, nil),
		mustInt64(t, "sales", []int64{10, 20, 30}, nil),
	)

	g, err := tbl.GroupBy("country")
	require.NoError(t, err)
	out, err := g.Agg(Aggregation{Column: "sales", Func: vector.AggSum})
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "sales_sum"}, out.ColumnNames())
	assert.Equal(t, [][]any{{"ES", 40.0}, {"FR", 20.0}}, cells(out))
}

func TestGroupBy_PartitionIsComplete(t *testing.T) {
	tbl := salesTable(t)
	g, err := tbl.GroupBy("country")
	require.NoError(t, err)

	assert.Equal(t, 3, g.NumGroups())
	var all []int
	for _, rows := range g.Groups() {
		require.NotEmpty(t, rows)
		assert.True(t, sort.IntsAreSorted(rows))
		all = append(all, rows...)
	}
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, all)

	// null keys form their own group, ordered by first appearance
	assert.Equal(t, [][]int{{0, 2}, {1, 4}, {3}}, g.Groups())
	keys := g.Keys()
	assert.Equal(t, "ES", keys[0][0].Text())
	assert.True(t, keys[2][0].IsNull())
}

func TestGroupBy_AggFunctions(t *testing.T) {
	g, err := salesTable(t).GroupBy("country")
	require.NoError(t, err)

	out, err := g.Agg(
		Aggregation{Column: "sales", Func: vector.AggMean},
		Aggregation{Column: "sales", Func: vector.AggCount},
		Aggregation{Column: "year", Func: vector.AggMax},
		Aggregation{Column: "year", Func: vector.AggFirst},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"country", "sales_mean", "sales_count", "year_max", "year_first"}, out.ColumnNames())
	assert.Equal(t, [][]any{
		{"ES", 20.0, int64(2), 2021.0, int64(2020)},
		{"FR", 20.0, int64(1), 2020.0, int64(2020)},
		{nil, 5.0, int64(1), 2021.0, int64(2021)},
	}, cells(out))

	firsts, err := out.Int64("year_first")
	require.NoError(t, err)
	assert.Equal(t, columnar.Int64, firsts.DataType())
}

func TestGroupBy_AggAllNullGroupIsNull(t *testing.T) {
	tbl := mustTable(t,
		mustText(t, "k", []string{"a", "b"}, nil),
		mustFloat64(t, "v", []float64{1, 0}, []bool{false, true}),
	)
	g, err := tbl.GroupBy("k")
	require.NoError(t, err)

	out, err := g.Agg(
		Aggregation{Column: "v", Func: vector.AggSum},
		Aggregation{Column: "v", Func: vector.AggFirst},
	)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", 1.0, 1.0}, {"b", nil, nil}}, cells(out))
}

func TestGroupBy_MultiKey(t *testing.T) {
	g, err := salesTable(t).GroupBy("country", "year")
	require.NoError(t, err)

	out, err := g.Count()
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "year", "count"}, out.ColumnNames())
	assert.Equal(t, [][]any{
		{"ES", "2020", int64(1)},
		{"FR", "2020", int64(2)},
		{"ES", "2021", int64(1)},
		{nil, "2021", int64(1)},
	}, cells(out))
}

func TestGroupBy_AggMap(t *testing.T) {
	g, err := salesTable(t).GroupBy("country")
	require.NoError(t, err)

	out, err := g.AggMap(map[string]vector.AggFunc{
		"year":  vector.AggCountUnique,
		"sales": vector.AggMin,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "sales_min", "year_countunique"}, out.ColumnNames())
	assert.Equal(t, [][]any{
		{"ES", 10.0, int64(2)},
		{"FR", 20.0, int64(1)},
		{nil, 5.0, int64(1)},
	}, cells(out))
}

func TestGroupBy_Validation(t *testing.T) {
	tbl := salesTable(t)

	_, err := tbl.GroupBy()
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = tbl.GroupBy("missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = tbl.GroupBy("year", "YEAR")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = tbl.GroupByWithSeparator("", "year")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	g, err := tbl.GroupBy("year")
	require.NoError(t, err)

	_, err = g.Agg(Aggregation{Column: "country", Func: vector.AggSum})
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, err = g.Agg(Aggregation{Column: "nope", Func: vector.AggSum})
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = g.Agg(
		Aggregation{Column: "sales", Func: vector.AggSum},
		Aggregation{Column: "sales", Func: vector.AggSum},
	)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = g.Group(2)
	assert.True(t, errors.IsType(err, errors.ErrorTypeOutOfRange))
}

func TestGroupBy_Filter(t *testing.T) {
	g, err := salesTable(t).GroupBy("country")
	require.NoError(t, err)

	out, err := g.Filter(func(group *Table) bool { return group.RowCount() > 1 })
	require.NoError(t, err)

	years, err := out.Int64("year")
	require.NoError(t, err)
	assert.Equal(t, []int64{2020, 2020, 2021, 2020}, years.Values())

	none, err := g.Filter(func(*Table) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, 0, none.RowCount())
	assert.Equal(t, 3, none.ColumnCount())
}

func TestGroupBy_Transform(t *testing.T) {
	tbl := salesTable(t)
	g, err := tbl.GroupBy("country")
	require.NoError(t, err)

	mean, err := g.Transform("sales", vector.AggMean)
	require.NoError(t, err)
	assert.Equal(t, "sales_mean", mean.Name())
	assert.Equal(t, tbl.RowCount(), mean.Len())

	vals := make([]any, mean.Len())
	for i := range vals {
		vals[i] = mean.Value(i).Any()
	}
	assert.Equal(t, []any{20.0, 20.0, 20.0, 5.0, 20.0}, vals)

	counts, err := g.Transform("country", vector.AggCount)
	require.NoError(t, err)
	assert.Equal(t, columnar.Int64, counts.DataType())
	assert.Equal(t, int64(2), counts.Value(4).Int())
	// the null group has no non-null key values to count
	assert.Equal(t, int64(0), counts.Value(3).Int())

	require.NoError(t, tbl.AddColumn(mean))
	assert.True(t, tbl.ContainsColumn("sales_mean"))
}

func TestGroupBy_Apply(t *testing.T) {
	g, err := salesTable(t).GroupBy("country")
	require.NoError(t, err)

	out, err := g.Apply(func(group *Table) (*Table, error) {
		if group.RowCount() < 2 {
			return nil, nil
		}
		return group.Head(1), nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, out.RowCount())
	years, err := out.Int64("year")
	require.NoError(t, err)
	assert.Equal(t, []int64{2020, 2020}, years.Values())
	country, err := out.Categorical("country")
	require.NoError(t, err)
	assert.Equal(t, "ES", country.Value(0).Text())
	assert.Equal(t, "FR", country.Value(1).Text())
}

func TestGroupBy_ApplyAllSkippedKeepsSchema(t *testing.T) {
	tbl := salesTable(t)
	g, err := tbl.GroupBy("country")
	require.NoError(t, err)

	out, err := g.Apply(func(*Table) (*Table, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, 0, out.RowCount())
	assert.Equal(t, tbl.ColumnNames(), out.ColumnNames())
}

func TestGroupBy_ApplyErrorKeepsType(t *testing.T) {
	g, err := salesTable(t).GroupBy("country")
	require.NoError(t, err)

	_, err = g.Apply(func(group *Table) (*Table, error) {
		return group.Select("missing")
	})
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestGroupBy_EmitsEvents(t *testing.T) {
	var ops []Operation
	tbl := salesTable(t).WithObserver(ObserverFunc(func(ev Event) {
		if ev.Groups > 0 {
			ops = append(ops, ev.Op)
		}
	}))
	g, err := tbl.GroupBy("country")
	require.NoError(t, err)

	_, err = g.Count()
	require.NoError(t, err)
	_, err = g.Transform("sales", vector.AggSum)
	require.NoError(t, err)

	assert.Equal(t, []Operation{OpGroupCount, OpGroupTransform}, ops)
}
