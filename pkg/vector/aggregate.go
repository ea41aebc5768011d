package vector

import (
	"math"
	"strings"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// AggFunc identifies an aggregate function
type AggFunc int

const (
	AggSum AggFunc = iota
	AggMean
	AggMin
	AggMax
	AggStd
	AggVar
	AggCount
	AggCountUnique
	AggProd
	AggMedian
	AggFirst
	AggLast
)

var aggNames = [...]string{
	AggSum:         "sum",
	AggMean:        "mean",
	AggMin:         "min",
	AggMax:         "max",
	AggStd:         "std",
	AggVar:         "var",
	AggCount:       "count",
	AggCountUnique: "countunique",
	AggProd:        "prod",
	AggMedian:      "median",
	AggFirst:       "first",
	AggLast:        "last",
}

// String returns the lowercase name used in derived column names
func (f AggFunc) String() string {
	if f < 0 || int(f) >= len(aggNames) {
		return "unknown"
	}
	return aggNames[f]
}

// ParseAggFunc resolves a case-insensitive aggregate name
func ParseAggFunc(name string) (AggFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "average", "avg":
		return AggMean, nil
	case "nunique", "count_unique":
		return AggCountUnique, nil
	}
	for f, n := range aggNames {
		if n == key {
			return AggFunc(f), nil
		}
	}
	return 0, errors.New(errors.ErrorTypeValidation, "unknown aggregate function").
		WithDetail("func", name)
}

// RequiresNumeric reports whether f is only defined over numeric columns
func (f AggFunc) RequiresNumeric() bool {
	switch f {
	case AggCount, AggCountUnique, AggFirst, AggLast:
		return false
	}
	return true
}

// ResultType returns the column type Aggregate produces for f over a column
// of type in. First and Last keep the input type.
func (f AggFunc) ResultType(in columnar.DataType) columnar.DataType {
	switch f {
	case AggCount, AggCountUnique:
		return columnar.Int64
	case AggFirst, AggLast:
		return in
	}
	return columnar.Float64
}

// CheckAggregate rejects a numeric-only aggregate on a non-numeric column
func CheckAggregate(col columnar.Column, f AggFunc) error {
	if f < 0 || int(f) >= len(aggNames) {
		return errors.New(errors.ErrorTypeValidation, "unknown aggregate function").
			WithDetail("func", int(f))
	}
	if f.RequiresNumeric() && !col.DataType().IsNumeric() {
		return errors.New(errors.ErrorTypeTypeMismatch, "aggregate requires a numeric column").
			WithDetail("column", col.Name()).
			WithDetail("type", col.DataType().String()).
			WithDetail("func", f.String())
	}
	return nil
}

// Aggregate reduces the given rows of col with f, ignoring nulls. A group
// without enough non-null values yields Null; Count and CountUnique always
// yield an integer.
func Aggregate(col columnar.Column, rows []int, f AggFunc) (columnar.Value, error) {
	if err := CheckAggregate(col, f); err != nil {
		return columnar.Null, err
	}

	switch f {
	case AggCount:
		n := 0
		for _, i := range rows {
			if !col.IsNull(i) {
				n++
			}
		}
		return columnar.IntValue(int64(n)), nil
	case AggCountUnique:
		return columnar.IntValue(int64(countUnique(col, rows))), nil
	case AggFirst, AggLast:
		row := Pick(col, rows, f)
		if row < 0 {
			return columnar.Null, nil
		}
		return col.Value(row), nil
	}

	num, ok := col.(columnar.NumericColumn)
	if !ok {
		return columnar.Null, errors.New(errors.ErrorTypeInternal, "numeric column does not expose float access").
			WithDetail("column", col.Name())
	}
	x := collect(num, rows)
	if len(x) < minValues(f) {
		return columnar.Null, nil
	}
	return columnar.FloatValue(reduceFloats(x, f)), nil
}

// Pick returns the first (AggFirst) or last (AggLast) non-null row among
// rows, or -1 when every row is null.
func Pick(col columnar.Column, rows []int, f AggFunc) int {
	if f == AggLast {
		for k := len(rows) - 1; k >= 0; k-- {
			if !col.IsNull(rows[k]) {
				return rows[k]
			}
		}
		return -1
	}
	for _, i := range rows {
		if !col.IsNull(i) {
			return i
		}
	}
	return -1
}

func reduceFloats(x []float64, f AggFunc) float64 {
	switch f {
	case AggSum:
		return sumOf(x)
	case AggMean:
		return meanOf(x)
	case AggMin:
		return minOf(x)
	case AggMax:
		return maxOf(x)
	case AggStd:
		return stdOf(x)
	case AggVar:
		return varOf(x)
	case AggProd:
		return prodOf(x)
	case AggMedian:
		return medianOf(x)
	}
	return math.NaN()
}

// minValues is the number of non-null values f needs to produce a result.
// A NaN stored in the column is a value and propagates through the reduction.
func minValues(f AggFunc) int {
	if f == AggStd || f == AggVar {
		return 2
	}
	return 1
}

func countUnique(col columnar.Column, rows []int) int {
	if cat, ok := col.(*columnar.CategoricalColumn); ok {
		seen := make([]bool, cat.Dictionary().Len())
		codes := cat.Codes()
		n := 0
		for _, i := range rows {
			code := codes[i]
			if code == columnar.NullCode || seen[code] {
				continue
			}
			seen[code] = true
			n++
		}
		return n
	}

	seen := make(map[columnar.Value]struct{}, len(rows))
	for _, i := range rows {
		if v := col.Value(i); !v.IsNull() {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
