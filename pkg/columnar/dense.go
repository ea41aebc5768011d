package columnar

import (
	"cmp"
	"strconv"
	"time"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// DenseColumn stores a contiguous []T plus a parallel bit-level null mask.
// Null slots hold the zero value of T.
type DenseColumn[T Element] struct {
	name   string
	data   []T
	nulls  Bitmap
	traits traits[T]
}

// Concrete dense column kinds
type (
	Int64Column   = DenseColumn[int64]
	Int32Column   = DenseColumn[int32]
	Float64Column = DenseColumn[float64]
	Float32Column = DenseColumn[float32]
	BoolColumn    = DenseColumn[bool]
	DateColumn    = DenseColumn[time.Time]
)

// traits holds the per-element-type behavior resolved once at construction,
// so per-row code never type-switches.
type traits[T Element] struct {
	dtype   DataType
	compare func(a, b T) int
	value   func(v T) Value
	float   func(v T) float64
	key     func(dst []byte, v T) []byte
}

func traitsOf[T Element]() traits[T] {
	var zero T
	var t any
	switch any(zero).(type) {
	case int64:
		t = traits[int64]{
			dtype:   Int64,
			compare: cmp.Compare[int64],
			value:   IntValue,
			float:   func(v int64) float64 { return float64(v) },
			key:     func(dst []byte, v int64) []byte { return strconv.AppendInt(dst, v, 10) },
		}
	case int32:
		t = traits[int32]{
			dtype:   Int32,
			compare: cmp.Compare[int32],
			value:   func(v int32) Value { return IntValue(int64(v)) },
			float:   func(v int32) float64 { return float64(v) },
			key:     func(dst []byte, v int32) []byte { return strconv.AppendInt(dst, int64(v), 10) },
		}
	case float64:
		t = traits[float64]{
			dtype:   Float64,
			compare: cmp.Compare[float64],
			value:   FloatValue,
			float:   func(v float64) float64 { return v },
			key:     func(dst []byte, v float64) []byte { return appendFloatKey(dst, v, 64) },
		}
	case float32:
		t = traits[float32]{
			dtype:   Float32,
			compare: cmp.Compare[float32],
			value:   func(v float32) Value { return FloatValue(float64(v)) },
			float:   func(v float32) float64 { return float64(v) },
			key:     func(dst []byte, v float32) []byte { return appendFloatKey(dst, float64(v), 32) },
		}
	case bool:
		t = traits[bool]{
			dtype: Bool,
			compare: func(a, b bool) int {
				switch {
				case a == b:
					return 0
				case !a:
					return -1
				default:
					return 1
				}
			},
			value: BoolValue,
			key:   strconv.AppendBool,
		}
	case time.Time:
		t = traits[time.Time]{
			dtype:   Date,
			compare: func(a, b time.Time) int { return a.Compare(b) },
			value:   DateValue,
			key:     func(dst []byte, v time.Time) []byte { return strconv.AppendInt(dst, v.UnixNano(), 10) },
		}
	}
	return t.(traits[T])
}

// appendFloatKey formats v for grouping and joining. Negative zero compares
// equal to zero and shares its key; every NaN encodes as "NaN".
func appendFloatKey(dst []byte, v float64, bits int) []byte {
	if v == 0 {
		v = 0
	}
	return strconv.AppendFloat(dst, v, 'g', -1, bits)
}

// NewDense builds a dense column from a typed array and an optional null
// mask (nil means no nulls). The column takes ownership of data; null slots
// are reset to the zero value.
func NewDense[T Element](name string, data []T, nulls []bool) (*DenseColumn[T], error) {
	if nulls != nil && len(nulls) != len(data) {
		return nil, errors.New(errors.ErrorTypeValidation, "null mask length does not match data length").
			WithDetail("column", name).
			WithDetail("data_length", len(data)).
			WithDetail("mask_length", len(nulls))
	}

	var zero T
	for i, isNull := range nulls {
		if isNull {
			data[i] = zero
		}
	}

	return &DenseColumn[T]{
		name:   name,
		data:   data,
		nulls:  BitmapFromBools(len(data), nulls),
		traits: traitsOf[T](),
	}, nil
}

// AllocateDense creates an n-row column with every cell null, ready to be
// populated by a loader through Set.
func AllocateDense[T Element](name string, n int) *DenseColumn[T] {
	c := &DenseColumn[T]{
		name:   name,
		data:   make([]T, n),
		nulls:  NewBitmap(n),
		traits: traitsOf[T](),
	}
	for i := 0; i < n; i++ {
		c.nulls.Set(i)
	}
	return c
}

// NewInt64 builds an int64 column
func NewInt64(name string, data []int64, nulls []bool) (*Int64Column, error) {
	return NewDense(name, data, nulls)
}

// NewInt32 builds an int32 column
func NewInt32(name string, data []int32, nulls []bool) (*Int32Column, error) {
	return NewDense(name, data, nulls)
}

// NewFloat64 builds a float64 column
func NewFloat64(name string, data []float64, nulls []bool) (*Float64Column, error) {
	return NewDense(name, data, nulls)
}

// NewFloat32 builds a float32 column
func NewFloat32(name string, data []float32, nulls []bool) (*Float32Column, error) {
	return NewDense(name, data, nulls)
}

// NewBool builds a boolean column
func NewBool(name string, data []bool, nulls []bool) (*BoolColumn, error) {
	return NewDense(name, data, nulls)
}

// NewDate builds a date column
func NewDate(name string, data []time.Time, nulls []bool) (*DateColumn, error) {
	return NewDense(name, data, nulls)
}

func (c *DenseColumn[T]) Name() string       { return c.name }
func (c *DenseColumn[T]) Len() int           { return len(c.data) }
func (c *DenseColumn[T]) DataType() DataType { return c.traits.dtype }
func (c *DenseColumn[T]) NullCount() int     { return c.nulls.Count() }

// IsNull reports whether row i is null
func (c *DenseColumn[T]) IsNull(i int) bool {
	checkRow(c, i)
	return c.nulls.Get(i)
}

// At returns row i and whether it is non-null
func (c *DenseColumn[T]) At(i int) (T, bool) {
	checkRow(c, i)
	return c.data[i], !c.nulls.Get(i)
}

// Value returns row i as a Value
func (c *DenseColumn[T]) Value(i int) Value {
	checkRow(c, i)
	if c.nulls.Get(i) {
		return Null
	}
	return c.traits.value(c.data[i])
}

// Float returns row i as float64. Panics for non-numeric element types.
func (c *DenseColumn[T]) Float(i int) float64 {
	if c.traits.float == nil {
		panic(errors.New(errors.ErrorTypeTypeMismatch, "column is not numeric").
			WithDetail("column", c.name).
			WithDetail("type", c.traits.dtype.String()))
	}
	return c.traits.float(c.data[i])
}

// Values returns the backing array. Callers must not modify it and must
// consult IsNull for the rows they read.
func (c *DenseColumn[T]) Values() []T { return c.data }

// Set assigns row i and marks it non-null. Intended for loaders populating a
// freshly allocated column only.
func (c *DenseColumn[T]) Set(i int, v T) {
	checkRow(c, i)
	c.data[i] = v
	c.nulls.Clear(i)
}

// SetNull marks row i null. Intended for loaders only.
func (c *DenseColumn[T]) SetNull(i int) {
	checkRow(c, i)
	var zero T
	c.data[i] = zero
	c.nulls.Set(i)
}

// IsNullMask returns a mask that is true at null rows
func (c *DenseColumn[T]) IsNullMask() Mask {
	mask := make(Mask, len(c.data))
	if !c.nulls.Any() {
		return mask
	}
	for i := range mask {
		mask[i] = c.nulls.Get(i)
	}
	return mask
}

// Rename returns a column sharing storage under a new name
func (c *DenseColumn[T]) Rename(name string) Column {
	cp := *c
	cp.name = name
	return &cp
}

// Filter keeps the rows where mask is true
func (c *DenseColumn[T]) Filter(mask Mask) (Column, error) {
	if err := checkMask(c, mask); err != nil {
		return nil, err
	}

	n := countTrue(mask)
	out := &DenseColumn[T]{
		name:   c.name,
		data:   make([]T, 0, n),
		nulls:  NewBitmap(n),
		traits: c.traits,
	}
	hasNulls := c.nulls.Any()
	for i, keep := range mask {
		if !keep {
			continue
		}
		if hasNulls && c.nulls.Get(i) {
			out.nulls.Set(len(out.data))
		}
		out.data = append(out.data, c.data[i])
	}
	return out, nil
}

// Gather builds a column from source rows; -1 yields null
func (c *DenseColumn[T]) Gather(indices []int) (Column, error) {
	if err := checkIndices(c, indices); err != nil {
		return nil, err
	}
	return c.gather(indices), nil
}

func (c *DenseColumn[T]) gather(indices []int) *DenseColumn[T] {
	out := &DenseColumn[T]{
		name:   c.name,
		data:   make([]T, len(indices)),
		nulls:  NewBitmap(len(indices)),
		traits: c.traits,
	}
	for k, idx := range indices {
		if idx < 0 || c.nulls.Get(idx) {
			out.nulls.Set(k)
			continue
		}
		out.data[k] = c.data[idx]
	}
	return out
}

func (c *DenseColumn[T]) appendKey(dst []byte, i int, _ bool) []byte {
	return c.traits.key(dst, c.data[i])
}

func (c *DenseColumn[T]) concatWith(name string, parts []Column) (Column, error) {
	total := 0
	typed := make([]*DenseColumn[T], len(parts))
	for i, p := range parts {
		d, ok := p.(*DenseColumn[T])
		if !ok {
			return nil, concatMismatch(name, c, p)
		}
		typed[i] = d
		total += d.Len()
	}

	out := &DenseColumn[T]{
		name:   name,
		data:   make([]T, total),
		nulls:  NewBitmap(total),
		traits: c.traits,
	}
	offset := 0
	for _, d := range typed {
		copy(out.data[offset:], d.data)
		if d.nulls.Any() {
			for i := range d.data {
				if d.nulls.Get(i) {
					out.nulls.Set(offset + i)
				}
			}
		}
		offset += len(d.data)
	}
	return out, nil
}

func (c *DenseColumn[T]) coalesceWith(name string, right Column, leftIdx, rightIdx []int) (Column, error) {
	r, ok := right.(*DenseColumn[T])
	if !ok {
		return nil, keyMismatch(c, right)
	}

	out := &DenseColumn[T]{
		name:   name,
		data:   make([]T, len(leftIdx)),
		nulls:  NewBitmap(len(leftIdx)),
		traits: c.traits,
	}
	for k := range leftIdx {
		src, idx := c, leftIdx[k]
		if idx < 0 {
			src, idx = r, rightIdx[k]
		}
		if idx < 0 || src.nulls.Get(idx) {
			out.nulls.Set(k)
			continue
		}
		out.data[k] = src.data[idx]
	}
	return out, nil
}
