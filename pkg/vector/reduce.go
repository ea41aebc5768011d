package vector

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ajitpratap0/tabula/pkg/columnar"
)

// Reductions skip null rows. An empty or all-null input yields NaN, except
// Count which yields 0. Std and Var use the n-1 sample estimator and need at
// least two values.

// Sum returns the sum of the non-null rows
func Sum(c columnar.NumericColumn) float64 { return sumOf(collect(c, nil)) }

// Mean returns the arithmetic mean of the non-null rows
func Mean(c columnar.NumericColumn) float64 { return meanOf(collect(c, nil)) }

// Min returns the smallest non-null row
func Min(c columnar.NumericColumn) float64 { return minOf(collect(c, nil)) }

// Max returns the largest non-null row
func Max(c columnar.NumericColumn) float64 { return maxOf(collect(c, nil)) }

// Std returns the sample standard deviation of the non-null rows
func Std(c columnar.NumericColumn) float64 { return stdOf(collect(c, nil)) }

// Var returns the sample variance of the non-null rows
func Var(c columnar.NumericColumn) float64 { return varOf(collect(c, nil)) }

// Prod returns the product of the non-null rows
func Prod(c columnar.NumericColumn) float64 { return prodOf(collect(c, nil)) }

// Median returns the median of the non-null rows
func Median(c columnar.NumericColumn) float64 { return medianOf(collect(c, nil)) }

// Count returns the number of non-null rows
func Count(c columnar.Column) int { return c.Len() - c.NullCount() }

// collect returns the non-null values at rows, or over the whole column when
// rows is nil
func collect(c columnar.NumericColumn, rows []int) []float64 {
	if rows == nil {
		out := make([]float64, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				out = append(out, c.Float(i))
			}
		}
		return out
	}
	out := make([]float64, 0, len(rows))
	for _, i := range rows {
		if !c.IsNull(i) {
			out = append(out, c.Float(i))
		}
	}
	return out
}

func sumOf(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Sum(x)
}

func meanOf(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

func minOf(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Min(x)
}

func maxOf(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Max(x)
}

func varOf(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Variance(x, nil)
}

func stdOf(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

func prodOf(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Prod(x)
}

// medianOf averages the two middle values for an even count. It sorts x.
func medianOf(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(x)
	if n%2 == 1 {
		return x[n/2]
	}
	return (x[n/2-1] + x[n/2]) / 2
}
