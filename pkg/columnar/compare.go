package columnar

// Comparison masks over dense columns. A null cell compares false against
// anything, so the masks never carry an unknown state.

func (c *DenseColumn[T]) where(pred func(cmp int) bool, v T) Mask {
	mask := make(Mask, len(c.data))
	hasNulls := c.nulls.Any()
	for i, x := range c.data {
		if hasNulls && c.nulls.Get(i) {
			continue
		}
		mask[i] = pred(c.traits.compare(x, v))
	}
	return mask
}

// Gt is true where the row is greater than v
func (c *DenseColumn[T]) Gt(v T) Mask { return c.where(func(r int) bool { return r > 0 }, v) }

// Ge is true where the row is greater than or equal to v
func (c *DenseColumn[T]) Ge(v T) Mask { return c.where(func(r int) bool { return r >= 0 }, v) }

// Lt is true where the row is less than v
func (c *DenseColumn[T]) Lt(v T) Mask { return c.where(func(r int) bool { return r < 0 }, v) }

// Le is true where the row is less than or equal to v
func (c *DenseColumn[T]) Le(v T) Mask { return c.where(func(r int) bool { return r <= 0 }, v) }

// Eq is true where the row equals v
func (c *DenseColumn[T]) Eq(v T) Mask { return c.where(func(r int) bool { return r == 0 }, v) }

// Ne is true where the row differs from v. Null rows are false.
func (c *DenseColumn[T]) Ne(v T) Mask { return c.where(func(r int) bool { return r != 0 }, v) }

// Between is true where lo <= row <= hi
func (c *DenseColumn[T]) Between(lo, hi T) Mask {
	mask := make(Mask, len(c.data))
	hasNulls := c.nulls.Any()
	for i, x := range c.data {
		if hasNulls && c.nulls.Get(i) {
			continue
		}
		mask[i] = c.traits.compare(x, lo) >= 0 && c.traits.compare(x, hi) <= 0
	}
	return mask
}

// NotNullMask returns a mask that is true at non-null rows
func (c *DenseColumn[T]) NotNullMask() Mask {
	mask := make(Mask, len(c.data))
	for i := range mask {
		mask[i] = !c.nulls.Get(i)
	}
	return mask
}
