package vector

import (
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Add returns a+b; a row is null when either operand is null
func Add[T columnar.Numeric](a, b *columnar.DenseColumn[T]) (*columnar.DenseColumn[T], error) {
	return binary(a, b, func(x, y T) T { return x + y })
}

// Subtract returns a-b; a row is null when either operand is null
func Subtract[T columnar.Numeric](a, b *columnar.DenseColumn[T]) (*columnar.DenseColumn[T], error) {
	return binary(a, b, func(x, y T) T { return x - y })
}

// Multiply returns a*b; a row is null when either operand is null
func Multiply[T columnar.Numeric](a, b *columnar.DenseColumn[T]) (*columnar.DenseColumn[T], error) {
	return binary(a, b, func(x, y T) T { return x * y })
}

// AddScalar returns a+s; null rows stay null
func AddScalar[T columnar.Numeric](a *columnar.DenseColumn[T], s T) *columnar.DenseColumn[T] {
	return unary(a, func(x T) T { return x + s })
}

// SubtractScalar returns a-s; null rows stay null
func SubtractScalar[T columnar.Numeric](a *columnar.DenseColumn[T], s T) *columnar.DenseColumn[T] {
	return unary(a, func(x T) T { return x - s })
}

// MultiplyScalar returns a*s; null rows stay null
func MultiplyScalar[T columnar.Numeric](a *columnar.DenseColumn[T], s T) *columnar.DenseColumn[T] {
	return unary(a, func(x T) T { return x * s })
}

// Divide returns a/b as float64. A row is null when either operand is null
// or the divisor is zero there; division by a computed zero is a data
// outcome, not an error.
func Divide(a, b columnar.NumericColumn) (*columnar.Float64Column, error) {
	if err := requireNumeric(a, b); err != nil {
		return nil, err
	}
	if err := sameLength(a, b); err != nil {
		return nil, err
	}
	n := a.Len()
	out := columnar.AllocateDense[float64](a.Name(), n)
	for i := 0; i < n; i++ {
		if a.IsNull(i) || b.IsNull(i) {
			continue
		}
		d := b.Float(i)
		if d == 0 {
			continue
		}
		out.Set(i, a.Float(i)/d)
	}
	return out, nil
}

// DivideScalar returns a/s as float64. A zero scalar is rejected before any
// row is computed.
func DivideScalar(a columnar.NumericColumn, s float64) (*columnar.Float64Column, error) {
	if err := requireNumeric(a); err != nil {
		return nil, err
	}
	if s == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "division by zero scalar").
			WithDetail("column", a.Name())
	}
	n := a.Len()
	out := columnar.AllocateDense[float64](a.Name(), n)
	for i := 0; i < n; i++ {
		if !a.IsNull(i) {
			out.Set(i, a.Float(i)/s)
		}
	}
	return out, nil
}

// ToFloat64 widens a numeric column to float64, keeping nulls
func ToFloat64(a columnar.NumericColumn) *columnar.Float64Column {
	if f, ok := a.(*columnar.Float64Column); ok {
		return f
	}
	n := a.Len()
	out := columnar.AllocateDense[float64](a.Name(), n)
	for i := 0; i < n; i++ {
		if !a.IsNull(i) {
			out.Set(i, a.Float(i))
		}
	}
	return out
}

func binary[T columnar.Numeric](a, b *columnar.DenseColumn[T], op func(x, y T) T) (*columnar.DenseColumn[T], error) {
	if err := sameLength(a, b); err != nil {
		return nil, err
	}
	av, bv := a.Values(), b.Values()
	out := columnar.AllocateDense[T](a.Name(), len(av))
	for i := range av {
		if a.IsNull(i) || b.IsNull(i) {
			continue
		}
		out.Set(i, op(av[i], bv[i]))
	}
	return out, nil
}

func unary[T columnar.Numeric](a *columnar.DenseColumn[T], op func(x T) T) *columnar.DenseColumn[T] {
	av := a.Values()
	out := columnar.AllocateDense[T](a.Name(), len(av))
	for i := range av {
		if !a.IsNull(i) {
			out.Set(i, op(av[i]))
		}
	}
	return out
}

func sameLength(a, b columnar.Column) error {
	if a.Len() != b.Len() {
		return errors.New(errors.ErrorTypeValidation, "column lengths differ").
			WithDetail("left", a.Name()).
			WithDetail("left_length", a.Len()).
			WithDetail("right", b.Name()).
			WithDetail("right_length", b.Len())
	}
	return nil
}

func requireNumeric(cols ...columnar.Column) error {
	for _, c := range cols {
		if !c.DataType().IsNumeric() {
			return errors.New(errors.ErrorTypeTypeMismatch, "column is not numeric").
				WithDetail("column", c.Name()).
				WithDetail("type", c.DataType().String())
		}
	}
	return nil
}
