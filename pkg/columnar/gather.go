package columnar

import (
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// Gather is the row-gather utility shared by table, grouping and join code:
// row k of the result is c's row indices[k], or null when indices[k] is -1.
func Gather(c Column, indices []int) (Column, error) {
	return c.Gather(indices)
}

// Concat stacks parts vertically into a single column called name. Dense
// parts must share one element type. Text and categorical parts may be mixed;
// the first part decides the result representation. Categorical parts that
// share one dictionary are concatenated code-to-code.
func Concat(name string, parts []Column) (Column, error) {
	if len(parts) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "concat requires at least one column").
			WithDetail("column", name)
	}
	return parts[0].concatWith(name, parts)
}

// Coalesce builds the single key column of a join result. Row k takes the
// left column at leftIdx[k], or the right column at rightIdx[k] when
// leftIdx[k] is -1; when both are -1 the row is null. The result has the
// left column's representation.
func Coalesce(name string, left, right Column, leftIdx, rightIdx []int) (Column, error) {
	if len(leftIdx) != len(rightIdx) {
		return nil, errors.New(errors.ErrorTypeInternal, "join index arrays differ in length").
			WithDetail("left", len(leftIdx)).
			WithDetail("right", len(rightIdx))
	}
	if err := checkIndices(left, leftIdx); err != nil {
		return nil, err
	}
	if err := checkIndices(right, rightIdx); err != nil {
		return nil, err
	}
	return left.coalesceWith(name, right, leftIdx, rightIdx)
}

// KeyCompatible reports whether two columns may be compared as join keys:
// the same dense type, or both text/categorical.
func KeyCompatible(a, b Column) bool {
	if a.DataType().IsString() && b.DataType().IsString() {
		return true
	}
	return a.DataType() == b.DataType()
}

func checkIndices(c Column, indices []int) error {
	n := c.Len()
	for k, idx := range indices {
		if idx < -1 || idx >= n {
			return errors.New(errors.ErrorTypeOutOfRange, "gather index out of range").
				WithDetail("column", c.Name()).
				WithDetail("position", k).
				WithDetail("index", idx).
				WithDetail("length", n)
		}
	}
	return nil
}

func concatMismatch(name string, first, other Column) error {
	return errors.New(errors.ErrorTypeTypeMismatch, "cannot concatenate columns of different types").
		WithDetail("column", name).
		WithDetail("expected", first.DataType().String()).
		WithDetail("actual", other.DataType().String())
}

func keyMismatch(left, right Column) error {
	return errors.New(errors.ErrorTypeTypeMismatch, "incompatible join key types").
		WithDetail("left", left.Name()).
		WithDetail("left_type", left.DataType().String()).
		WithDetail("right", right.Name()).
		WithDetail("right_type", right.DataType().String())
}
