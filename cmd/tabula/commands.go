package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/table"
	"github.com/ajitpratap0/tabula/pkg/vector"
)

func (a *app) headCommand() *cobra.Command {
	var (
		iof ioFlags
		n   int
	)
	cmd := &cobra.Command{
		Use:   "head <file>",
		Short: "Print the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			return a.write(tbl.Head(n), &iof)
		},
	}
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "Number of rows")
	iof.register(cmd)
	return cmd
}

func (a *app) tailCommand() *cobra.Command {
	var (
		iof ioFlags
		n   int
	)
	cmd := &cobra.Command{
		Use:   "tail <file>",
		Short: "Print the last rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			return a.write(tbl.Tail(n), &iof)
		},
	}
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "Number of rows")
	iof.register(cmd)
	return cmd
}

func (a *app) selectCommand() *cobra.Command {
	var (
		iof     ioFlags
		columns string
	)
	cmd := &cobra.Command{
		Use:   "select <file>",
		Short: "Project a table onto a list of columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := splitList(columns)
			if len(names) == 0 {
				return errors.New(errors.ErrorTypeValidation, "--columns is required")
			}
			tbl, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			out, err := tbl.Select(names...)
			if err != nil {
				return err
			}
			return a.write(out, &iof)
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "Comma separated column names, in output order")
	iof.register(cmd)
	return cmd
}

// filterPredicate holds the comparison flags of the filter command
type filterPredicate struct {
	column  string
	eq      string
	gt      string
	lt      string
	notNull bool
}

func (a *app) filterCommand() *cobra.Command {
	var (
		iof  ioFlags
		pred filterPredicate
	)
	cmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Keep the rows of a table matching a predicate on one column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			mask, err := pred.mask(tbl)
			if err != nil {
				return err
			}
			out, err := tbl.Filter(mask)
			if err != nil {
				return err
			}
			return a.write(out, &iof)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&pred.column, "column", "", "Column the predicate applies to")
	flags.StringVar(&pred.eq, "eq", "", "Keep rows equal to this value")
	flags.StringVar(&pred.gt, "gt", "", "Keep numeric rows greater than this value")
	flags.StringVar(&pred.lt, "lt", "", "Keep numeric rows less than this value")
	flags.BoolVar(&pred.notNull, "not-null", false, "Keep non-null rows")
	iof.register(cmd)
	return cmd
}

// mask evaluates the predicate against t. Null rows never match a
// comparison.
func (p filterPredicate) mask(t *table.Table) (columnar.Mask, error) {
	if p.column == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "--column is required")
	}
	col, err := t.Column(p.column)
	if err != nil {
		return nil, err
	}

	mask := make(columnar.Mask, col.Len())
	for i := range mask {
		mask[i] = !col.IsNull(i)
	}
	if p.eq == "" && p.gt == "" && p.lt == "" {
		if !p.notNull {
			return nil, errors.New(errors.ErrorTypeValidation, "one of --eq, --gt, --lt or --not-null is required")
		}
		return mask, nil
	}

	if p.eq != "" {
		if err := and(mask, col, p.eq, func(cmp int) bool { return cmp == 0 }); err != nil {
			return nil, err
		}
	}
	if p.gt != "" {
		if err := andNumeric(mask, col, p.gt, func(v, bound float64) bool { return v > bound }); err != nil {
			return nil, err
		}
	}
	if p.lt != "" {
		if err := andNumeric(mask, col, p.lt, func(v, bound float64) bool { return v < bound }); err != nil {
			return nil, err
		}
	}
	return mask, nil
}

// and narrows mask to the rows of col whose value compares to raw as keep
// says. Numeric columns compare numerically, everything else by rendered
// text.
func and(mask columnar.Mask, col columnar.Column, raw string, keep func(cmp int) bool) error {
	if _, ok := columnar.AsNumeric(col); ok {
		return andNumeric(mask, col, raw, func(v, bound float64) bool {
			switch {
			case v < bound:
				return keep(-1)
			case v > bound:
				return keep(1)
			}
			return keep(0)
		})
	}
	for i := range mask {
		if mask[i] {
			mask[i] = keep(strings.Compare(col.Value(i).String(), raw))
		}
	}
	return nil
}

func andNumeric(mask columnar.Mask, col columnar.Column, raw string, keep func(v, bound float64) bool) error {
	num, ok := columnar.AsNumeric(col)
	if !ok {
		return errors.New(errors.ErrorTypeTypeMismatch, "comparison requires a numeric column").
			WithDetail("column", col.Name()).
			WithDetail("type", col.DataType().String())
	}
	bound, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "comparison value is not a number").
			WithDetail("value", raw)
	}
	for i := range mask {
		if mask[i] {
			mask[i] = keep(num.Float(i), bound)
		}
	}
	return nil
}

func (a *app) groupByCommand() *cobra.Command {
	var (
		iof   ioFlags
		by    string
		aggs  string
		count bool
	)
	cmd := &cobra.Command{
		Use:   "groupby <file>",
		Short: "Group a table by key columns and aggregate each group",
		Long: `Group a table by key columns and aggregate each group.

Aggregations are given as column:function pairs, for example
--agg sales:sum,sales:mean,year:countunique. Supported functions are
sum, mean, min, max, std, var, count, countunique, prod, median, first and last.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := splitList(by)
			if len(keys) == 0 {
				return errors.New(errors.ErrorTypeValidation, "--by is required")
			}
			if count == (aggs != "") {
				return errors.New(errors.ErrorTypeValidation, "exactly one of --agg or --count is required")
			}
			var requested []table.Aggregation
			if aggs != "" {
				var err error
				if requested, err = parseAggregations(aggs); err != nil {
					return err
				}
			}

			tbl, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			g, err := tbl.GroupByWithSeparator(a.cfg.GroupBy.Separator, keys...)
			if err != nil {
				return err
			}

			var out *table.Table
			if count {
				out, err = g.Count()
			} else {
				out, err = g.Agg(requested...)
			}
			if err != nil {
				return err
			}
			return a.write(out, &iof)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&by, "by", "", "Comma separated key columns")
	flags.StringVar(&aggs, "agg", "", "Comma separated column:function aggregations")
	flags.BoolVar(&count, "count", false, "Count the rows of each group")
	iof.register(cmd)
	return cmd
}

func parseAggregations(value string) ([]table.Aggregation, error) {
	var out []table.Aggregation
	for _, item := range splitList(value) {
		column, fn, ok := strings.Cut(item, ":")
		if !ok || column == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "aggregations must be column:function").
				WithDetail("entry", item)
		}
		f, err := vector.ParseAggFunc(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, table.Aggregation{Column: column, Func: f})
	}
	return out, nil
}

func (a *app) mergeCommand() *cobra.Command {
	var (
		iof     ioFlags
		on      string
		leftOn  string
		rightOn string
		how     string
	)
	cmd := &cobra.Command{
		Use:   "merge <left> <right>",
		Short: "Hash-join two tables on key columns",
		Long: `Hash-join two tables on key columns.

Use --on when both tables name their keys the same, or --left-on and
--right-on otherwise. Overlapping non-key columns receive the suffixes
_x and _y. Both inputs share --format and --schema.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			joinType, err := table.ParseJoinType(how)
			if err != nil {
				return err
			}
			lk, rk := splitList(leftOn), splitList(rightOn)
			if keys := splitList(on); len(keys) > 0 {
				if len(lk) > 0 || len(rk) > 0 {
					return errors.New(errors.ErrorTypeValidation, "--on cannot be combined with --left-on or --right-on")
				}
				lk, rk = keys, keys
			}

			left, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			right, err := a.load(args[1], &iof)
			if err != nil {
				return err
			}
			out, err := left.MergeLeftRight(right, lk, rk, joinType)
			if err != nil {
				return err
			}
			return a.write(out, &iof)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&on, "on", "", "Comma separated key columns present in both tables")
	flags.StringVar(&leftOn, "left-on", "", "Comma separated key columns of the left table")
	flags.StringVar(&rightOn, "right-on", "", "Comma separated key columns of the right table")
	flags.StringVar(&how, "how", "inner", "Join type: inner, left, right or outer")
	iof.register(cmd)
	return cmd
}

func (a *app) describeCommand() *cobra.Command {
	var iof ioFlags
	cmd := &cobra.Command{
		Use:   "describe <file>",
		Short: "Summarize the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.load(args[0], &iof)
			if err != nil {
				return err
			}
			summary, err := describe(tbl)
			if err != nil {
				return err
			}
			return a.write(summary, &iof)
		},
	}
	iof.register(cmd)
	return cmd
}

// describe builds one summary row per column: type, non-null and null
// counts, plus mean, std, min and max for numeric columns
func describe(t *table.Table) (*table.Table, error) {
	n := t.ColumnCount()
	var (
		names  = make([]string, n)
		types  = make([]string, n)
		counts = make([]int64, n)
		nulls  = make([]int64, n)
		stats  = [4][]float64{}
		absent = make([]bool, n)
	)
	for k := range stats {
		stats[k] = make([]float64, n)
	}

	for i, col := range t.Columns() {
		names[i] = col.Name()
		types[i] = col.DataType().String()
		counts[i] = int64(vector.Count(col))
		nulls[i] = int64(col.NullCount())

		num, ok := columnar.AsNumeric(col)
		if !ok || counts[i] == 0 {
			absent[i] = true
			continue
		}
		stats[0][i] = vector.Mean(num)
		stats[1][i] = vector.Std(num)
		stats[2][i] = vector.Min(num)
		stats[3][i] = vector.Max(num)
	}

	cols := []columnar.Column{}
	nameCol, err := columnar.NewText("column", names, nil)
	if err != nil {
		return nil, err
	}
	typeCol, err := columnar.NewText("type", types, nil)
	if err != nil {
		return nil, err
	}
	countCol, err := columnar.NewInt64("count", counts, nil)
	if err != nil {
		return nil, err
	}
	nullCol, err := columnar.NewInt64("nulls", nulls, nil)
	if err != nil {
		return nil, err
	}
	cols = append(cols, nameCol, typeCol, countCol, nullCol)

	for k, label := range []string{"mean", "std", "min", "max"} {
		missing := make([]bool, n)
		for i, v := range stats[k] {
			missing[i] = absent[i] || math.IsNaN(v)
		}
		c, err := columnar.NewFloat64(label, stats[k], missing)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return table.NewFromColumns(cols...)
}
