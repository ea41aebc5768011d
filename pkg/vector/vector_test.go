package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

func TestMaskAlgebra(t *testing.T) {
	a := columnar.Mask{true, true, false, false}
	b := columnar.Mask{true, false, true, false}

	and, err := And(a, b)
	require.NoError(t, err)
	assert.Equal(t, columnar.Mask{true, false, false, false}, and)

	or, err := Or(a, b)
	require.NoError(t, err)
	assert.Equal(t, columnar.Mask{true, true, true, false}, or)

	xor, err := Xor(a, b)
	require.NoError(t, err)
	assert.Equal(t, columnar.Mask{false, true, true, false}, xor)

	assert.Equal(t, columnar.Mask{false, false, true, true}, Not(a))
	assert.Equal(t, 2, CountTrue(a))
	assert.Equal(t, []int{0, 2}, TrueIndices(b))

	_, err = And(a, columnar.Mask{true})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAllAny(t *testing.T) {
	a := columnar.Mask{true, true, false}
	b := columnar.Mask{true, false, false}
	c := columnar.Mask{true, true, true}

	all, err := All(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, columnar.Mask{true, false, false}, all)

	either, err := Any(a, b)
	require.NoError(t, err)
	assert.Equal(t, columnar.Mask{true, true, false}, either)

	single, err := All(a)
	require.NoError(t, err)
	assert.Equal(t, a, single)
	single[0] = false
	assert.True(t, a[0], "fold must not alias its first operand")

	_, err = Any()
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestAdd_NullPropagation(t *testing.T) {
	price, err := columnar.NewFloat64("price", []float64{10.5, 0, 15.75}, []bool{false, true, false})
	require.NoError(t, err)
	qty, err := columnar.NewInt64("qty", []int64{2, 3, 0}, []bool{false, false, true})
	require.NoError(t, err)

	sum, err := Add(price, ToFloat64(qty))
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Len())
	v, ok := sum.At(0)
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
	assert.True(t, sum.IsNull(1))
	assert.True(t, sum.IsNull(2))
}

func TestArithmetic_NullIsUnionOfInputs(t *testing.T) {
	a, err := columnar.NewInt64("a", []int64{1, 2, 3, 4}, []bool{false, true, false, true})
	require.NoError(t, err)
	b, err := columnar.NewInt64("b", []int64{5, 6, 7, 8}, []bool{false, false, true, true})
	require.NoError(t, err)

	ops := map[string]func(x, y *columnar.Int64Column) (*columnar.Int64Column, error){
		"add":      Add[int64],
		"subtract": Subtract[int64],
		"multiply": Multiply[int64],
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			out, err := op(a, b)
			require.NoError(t, err)
			for i := 0; i < out.Len(); i++ {
				assert.Equal(t, a.IsNull(i) || b.IsNull(i), out.IsNull(i), "row %d", i)
			}
		})
	}

	out, err := Multiply(a, b)
	require.NoError(t, err)
	assert.Equal(t, columnar.IntValue(5), out.Value(0))

	short, err := columnar.NewInt64("s", []int64{1}, nil)
	require.NoError(t, err)
	_, err = Add(a, short)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestScalarArithmetic(t *testing.T) {
	a, err := columnar.NewFloat64("a", []float64{1, 2, 0}, []bool{false, false, true})
	require.NoError(t, err)

	out := AddScalar(a, 10)
	assert.Equal(t, columnar.FloatValue(11), out.Value(0))
	assert.True(t, out.IsNull(2))

	out = SubtractScalar(a, 1)
	assert.Equal(t, columnar.FloatValue(1), out.Value(1))

	out = MultiplyScalar(a, 3)
	assert.Equal(t, columnar.FloatValue(6), out.Value(1))
	assert.True(t, out.IsNull(2))
}

func TestDivide_ColumnByColumnNullsZeroDivisor(t *testing.T) {
	a, err := columnar.NewFloat64("a", []float64{10, 20, 30}, nil)
	require.NoError(t, err)
	b, err := columnar.NewInt64("b", []int64{2, 4, 0}, nil)
	require.NoError(t, err)

	out, err := Divide(a, b)
	require.NoError(t, err)
	assert.Equal(t, columnar.FloatValue(5), out.Value(0))
	assert.Equal(t, columnar.FloatValue(5), out.Value(1))
	assert.True(t, out.IsNull(2))
}

func TestDivideScalar_ZeroFailsEagerly(t *testing.T) {
	a, err := columnar.NewFloat64("a", []float64{10, 20}, nil)
	require.NoError(t, err)

	out, err := DivideScalar(a, 0)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	out, err = DivideScalar(a, 4)
	require.NoError(t, err)
	assert.Equal(t, columnar.FloatValue(5), out.Value(1))

	flags, err := columnar.NewBool("f", []bool{true}, nil)
	require.NoError(t, err)
	_, err = DivideScalar(flags, 2)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestReductions(t *testing.T) {
	col, err := columnar.NewFloat64("v", []float64{2, 4, 0, 4, 5, 5, 7, 9}, []bool{false, false, true, false, false, false, false, false})
	require.NoError(t, err)

	assert.Equal(t, 36.0, Sum(col))
	assert.InDelta(t, 36.0/7, Mean(col), 1e-12)
	assert.Equal(t, 2.0, Min(col))
	assert.Equal(t, 9.0, Max(col))
	assert.Equal(t, 5.0, Median(col))
	assert.Equal(t, 7, Count(col))
	assert.InDelta(t, math.Sqrt(Var(col)), Std(col), 1e-12)
}

func TestReductions_EmptyAndAllNull(t *testing.T) {
	empty, err := columnar.NewFloat64("e", nil, nil)
	require.NoError(t, err)
	nulls, err := columnar.NewInt64("n", []int64{0, 0}, []bool{true, true})
	require.NoError(t, err)

	for _, c := range []columnar.NumericColumn{empty, nulls} {
		assert.True(t, math.IsNaN(Sum(c)))
		assert.True(t, math.IsNaN(Mean(c)))
		assert.True(t, math.IsNaN(Min(c)))
		assert.True(t, math.IsNaN(Max(c)))
		assert.True(t, math.IsNaN(Std(c)))
		assert.Equal(t, 0, Count(c))
	}
}

func TestStd_SampleEstimator(t *testing.T) {
	col, err := columnar.NewFloat64("v", []float64{1, 2, 3, 4}, nil)
	require.NoError(t, err)

	// sum of squared deviations is 5, divided by n-1
	assert.InDelta(t, 5.0/3, Var(col), 1e-12)

	one, err := columnar.NewFloat64("v", []float64{1}, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(Std(one)))
}

func TestMedian_Even(t *testing.T) {
	col, err := columnar.NewInt64("v", []int64{4, 1, 3, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, Median(col))
	// the column itself is not reordered
	assert.Equal(t, []int64{4, 1, 3, 2}, col.Values())
}
