package table

import (
	"sort"
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/internal/grouping"
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

// CountColumn is the name of the column produced by GroupBy.Count
const CountColumn = "count"

// Aggregation requests one aggregate over one column
type Aggregation struct {
	Column string
	Func   vector.AggFunc
}

// OutputName returns the derived column name "{column}_{func}"
func (a Aggregation) OutputName() string {
	return a.Column + "_" + a.Func.String()
}

// GroupBy holds a table partitioned by key columns. The partition is built
// once; every materializing call reuses it.
type GroupBy struct {
	table *Table
	keys  []columnar.Column
	part  *grouping.Partition
}

// GroupBy partitions the table by the named key columns, joining composite
// key components with columnar.DefaultSeparator
func (t *Table) GroupBy(keys ...string) (*GroupBy, error) {
	return t.GroupByWithSeparator(columnar.DefaultSeparator, keys...)
}

// GroupByWithSeparator is GroupBy with a caller-chosen key separator. Text
// keys containing the separator may collide; pick one absent from the data.
func (t *Table) GroupByWithSeparator(sep string, keys ...string) (*GroupBy, error) {
	if len(keys) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "groupby requires at least one key column")
	}
	if sep == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "groupby separator must not be empty")
	}

	cols := make([]columnar.Column, len(keys))
	seen := make(map[string]bool, len(keys))
	for i, name := range keys {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, errors.New(errors.ErrorTypeValidation, "key column listed more than once").
				WithDetail("column", name)
		}
		seen[key] = true
		cols[i] = col
	}

	part, err := grouping.Build(cols, sep)
	if err != nil {
		return nil, err
	}
	return &GroupBy{table: t, keys: cols, part: part}, nil
}

// NumGroups returns the number of groups
func (g *GroupBy) NumGroups() int { return g.part.Len() }

// Groups returns a copy of each group's source row indices, in group order
func (g *GroupBy) Groups() [][]int {
	out := make([][]int, len(g.part.Rows))
	for i, rows := range g.part.Rows {
		out[i] = append([]int(nil), rows...)
	}
	return out
}

// Keys returns each group's key values, in group order
func (g *GroupBy) Keys() [][]columnar.Value {
	out := make([][]columnar.Value, len(g.part.First))
	for gid, row := range g.part.First {
		vals := make([]columnar.Value, len(g.keys))
		for k, c := range g.keys {
			vals[k] = c.Value(row)
		}
		out[gid] = vals
	}
	return out
}

// Group materializes group gid as a table
func (g *GroupBy) Group(gid int) (*Table, error) {
	if gid < 0 || gid >= g.part.Len() {
		return nil, errors.New(errors.ErrorTypeOutOfRange, "group index out of range").
			WithDetail("group", gid).
			WithDetail("groups", g.part.Len())
	}
	return g.table.gatherRows(g.part.Rows[gid])
}

// Agg computes one row per group: the key columns, rebuilt as decoded text,
// followed by one column per aggregation named "{column}_{func}".
func (g *GroupBy) Agg(aggs ...Aggregation) (*Table, error) {
	start := time.Now()
	out, err := g.agg(aggs)
	g.emit(OpGroupAgg, start, out, err)
	return out, err
}

// AggMap is Agg over a column-to-function map, in column name order
func (g *GroupBy) AggMap(funcs map[string]vector.AggFunc) (*Table, error) {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	aggs := make([]Aggregation, len(names))
	for i, name := range names {
		aggs[i] = Aggregation{Column: name, Func: funcs[name]}
	}
	return g.Agg(aggs...)
}

func (g *GroupBy) agg(aggs []Aggregation) (*Table, error) {
	cols := make([]columnar.Column, len(aggs))
	for i, a := range aggs {
		col, err := g.table.Column(a.Column)
		if err != nil {
			return nil, err
		}
		if err := vector.CheckAggregate(col, a.Func); err != nil {
			return nil, err
		}
		cols[i] = col
	}

	out := g.keyTable()
	for i, a := range aggs {
		col, err := g.aggregateColumn(cols[i], a.Func, a.OutputName())
		if err != nil {
			return nil, err
		}
		if err := out.addUnique(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Count returns the key columns plus the row count of each group
func (g *GroupBy) Count() (*Table, error) {
	start := time.Now()
	out := g.keyTable()
	counts := make([]int64, g.part.Len())
	for gid, rows := range g.part.Rows {
		counts[gid] = int64(len(rows))
	}
	col, err := columnar.NewInt64(CountColumn, counts, nil)
	if err == nil {
		err = out.addUnique(col)
	}
	if err != nil {
		out = nil
	}
	g.emit(OpGroupCount, start, out, err)
	return out, err
}

// Filter keeps every row of the groups for which pred returns true. Rows
// keep their original order.
func (g *GroupBy) Filter(pred func(group *Table) bool) (*Table, error) {
	start := time.Now()
	out, err := g.filter(pred)
	g.emit(OpGroupFilter, start, out, err)
	return out, err
}

func (g *GroupBy) filter(pred func(group *Table) bool) (*Table, error) {
	var keep []int
	for _, rows := range g.part.Rows {
		group, err := g.table.gatherRows(rows)
		if err != nil {
			return nil, err
		}
		if pred(group) {
			keep = append(keep, rows...)
		}
	}
	sort.Ints(keep)
	if keep == nil {
		keep = []int{}
	}
	return g.table.gatherRows(keep)
}

// Transform computes fn per group over column and broadcasts the result to
// every row of the group. The result has the source table's row count and
// is named "{column}_{func}".
func (g *GroupBy) Transform(column string, fn vector.AggFunc) (columnar.Column, error) {
	start := time.Now()
	col, err := g.transform(column, fn)

	ev := Event{Op: OpGroupTransform, Start: start, InputRows: g.table.rowCount, Groups: g.part.Len()}
	ev.Duration = time.Since(start)
	ev.Err = err
	if err == nil {
		ev.OutputRows = col.Len()
		ev.Columns = 1
	}
	g.table.observer.OnOperation(ev)
	return col, err
}

func (g *GroupBy) transform(column string, fn vector.AggFunc) (columnar.Column, error) {
	src, err := g.table.Column(column)
	if err != nil {
		return nil, err
	}
	if err := vector.CheckAggregate(src, fn); err != nil {
		return nil, err
	}
	name := Aggregation{Column: src.Name(), Func: fn}.OutputName()
	n := g.table.rowCount

	switch fn {
	case vector.AggFirst, vector.AggLast:
		indices := make([]int, n)
		for _, rows := range g.part.Rows {
			pick := vector.Pick(src, rows, fn)
			for _, r := range rows {
				indices[r] = pick
			}
		}
		return gatherAs(src, indices, name)
	case vector.AggCount, vector.AggCountUnique:
		out := columnar.AllocateDense[int64](name, n)
		for _, rows := range g.part.Rows {
			v, err := vector.Aggregate(src, rows, fn)
			if err != nil {
				return nil, err
			}
			for _, r := range rows {
				out.Set(r, v.Int())
			}
		}
		return out, nil
	}

	out := columnar.AllocateDense[float64](name, n)
	for _, rows := range g.part.Rows {
		v, err := vector.Aggregate(src, rows, fn)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			continue
		}
		for _, r := range rows {
			out.Set(r, v.Float())
		}
	}
	return out, nil
}

// Apply runs fn on each group and stacks the non-nil results in group
// order. Results must share column names and types.
func (g *GroupBy) Apply(fn func(group *Table) (*Table, error)) (*Table, error) {
	start := time.Now()
	out, err := g.apply(fn)
	g.emit(OpGroupApply, start, out, err)
	return out, err
}

func (g *GroupBy) apply(fn func(group *Table) (*Table, error)) (*Table, error) {
	var parts []*Table
	for gid, rows := range g.part.Rows {
		group, err := g.table.gatherRows(rows)
		if err != nil {
			return nil, err
		}
		res, err := fn(group)
		if err != nil {
			errType := errors.TypeOf(err)
			if errType == "" {
				errType = errors.ErrorTypeInternal
			}
			return nil, errors.Wrap(err, errType, "groupby apply function failed").
				WithDetail("group", gid)
		}
		if res != nil {
			parts = append(parts, res)
		}
	}

	if len(parts) == 0 {
		return g.table.gatherRows([]int{})
	}
	out, err := concatTables(parts)
	if err != nil {
		return nil, err
	}
	out.observer = g.table.observer
	return out, nil
}

// keyTable builds one row per group holding the decoded key values as text
func (g *GroupBy) keyTable() *Table {
	out := g.table.derive(g.part.Len())
	for _, k := range g.keys {
		col := columnar.AllocateText(k.Name(), g.part.Len())
		for gid, row := range g.part.First {
			if v := k.Value(row); !v.IsNull() {
				s := v.String()
				col.Set(gid, &s)
			}
		}
		out.appendColumn(col)
	}
	return out
}

func (g *GroupBy) aggregateColumn(src columnar.Column, fn vector.AggFunc, name string) (columnar.Column, error) {
	switch fn {
	case vector.AggFirst, vector.AggLast:
		picks := make([]int, g.part.Len())
		for gid, rows := range g.part.Rows {
			picks[gid] = vector.Pick(src, rows, fn)
		}
		return gatherAs(src, picks, name)
	case vector.AggCount, vector.AggCountUnique:
		out := columnar.AllocateDense[int64](name, g.part.Len())
		for gid, rows := range g.part.Rows {
			v, err := vector.Aggregate(src, rows, fn)
			if err != nil {
				return nil, err
			}
			out.Set(gid, v.Int())
		}
		return out, nil
	}

	out := columnar.AllocateDense[float64](name, g.part.Len())
	for gid, rows := range g.part.Rows {
		v, err := vector.Aggregate(src, rows, fn)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() {
			out.Set(gid, v.Float())
		}
	}
	return out, nil
}

func (g *GroupBy) emit(op Operation, start time.Time, out *Table, err error) {
	g.table.emit(Event{
		Op:        op,
		Start:     start,
		InputRows: g.table.rowCount,
		Groups:    g.part.Len(),
	}, out, err)
}
