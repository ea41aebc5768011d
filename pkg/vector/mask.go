// Package vector provides mask algebra, elementwise arithmetic and the
// aggregate kernels used by tabula's grouping engine.
package vector

import (
	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// And returns the elementwise conjunction of a and b
func And(a, b columnar.Mask) (columnar.Mask, error) {
	return zip(a, b, func(x, y bool) bool { return x && y })
}

// Or returns the elementwise disjunction of a and b
func Or(a, b columnar.Mask) (columnar.Mask, error) {
	return zip(a, b, func(x, y bool) bool { return x || y })
}

// Xor returns the elementwise exclusive or of a and b
func Xor(a, b columnar.Mask) (columnar.Mask, error) {
	return zip(a, b, func(x, y bool) bool { return x != y })
}

// Not returns the elementwise negation of m
func Not(m columnar.Mask) columnar.Mask {
	out := make(columnar.Mask, len(m))
	for i, v := range m {
		out[i] = !v
	}
	return out
}

// All folds masks with And. At least one mask is required.
func All(masks ...columnar.Mask) (columnar.Mask, error) {
	return fold(masks, And)
}

// Any folds masks with Or. At least one mask is required.
func Any(masks ...columnar.Mask) (columnar.Mask, error) {
	return fold(masks, Or)
}

// CountTrue returns the number of set positions
func CountTrue(m columnar.Mask) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// TrueIndices returns the set positions in ascending order
func TrueIndices(m columnar.Mask) []int {
	out := make([]int, 0, CountTrue(m))
	for i, v := range m {
		if v {
			out = append(out, i)
		}
	}
	return out
}

func zip(a, b columnar.Mask, op func(x, y bool) bool) (columnar.Mask, error) {
	if len(a) != len(b) {
		return nil, errors.New(errors.ErrorTypeValidation, "mask lengths differ").
			WithDetail("left", len(a)).
			WithDetail("right", len(b))
	}
	out := make(columnar.Mask, len(a))
	for i := range a {
		out[i] = op(a[i], b[i])
	}
	return out, nil
}

func fold(masks []columnar.Mask, op func(a, b columnar.Mask) (columnar.Mask, error)) (columnar.Mask, error) {
	if len(masks) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "at least one mask is required")
	}
	acc := append(columnar.Mask(nil), masks[0]...)
	for _, m := range masks[1:] {
		var err error
		if acc, err = op(acc, m); err != nil {
			return nil, err
		}
	}
	return acc, nil
}
