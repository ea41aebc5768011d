package columnar

import (
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// TextColumn stores nullable string references. A nil reference is null; the
// empty string is an ordinary non-null value.
type TextColumn struct {
	name   string
	values []*string
}

// NewText builds a text column from values and an optional null mask. The
// column references the elements of values; callers hand over the slice.
func NewText(name string, values []string, nulls []bool) (*TextColumn, error) {
	if nulls != nil && len(nulls) != len(values) {
		return nil, errors.New(errors.ErrorTypeValidation, "null mask length does not match data length").
			WithDetail("column", name).
			WithDetail("data_length", len(values)).
			WithDetail("mask_length", len(nulls))
	}

	refs := make([]*string, len(values))
	for i := range values {
		if nulls != nil && nulls[i] {
			continue
		}
		refs[i] = &values[i]
	}
	return &TextColumn{name: name, values: refs}, nil
}

// NewTextFromPointers builds a text column that takes ownership of refs
func NewTextFromPointers(name string, refs []*string) *TextColumn {
	return &TextColumn{name: name, values: refs}
}

// AllocateText creates an n-row all-null text column for loaders
func AllocateText(name string, n int) *TextColumn {
	return &TextColumn{name: name, values: make([]*string, n)}
}

func (c *TextColumn) Name() string       { return c.name }
func (c *TextColumn) Len() int           { return len(c.values) }
func (c *TextColumn) DataType() DataType { return Text }

// IsNull reports whether row i is null
func (c *TextColumn) IsNull(i int) bool {
	checkRow(c, i)
	return c.values[i] == nil
}

// At returns row i and whether it is non-null
func (c *TextColumn) At(i int) (string, bool) {
	checkRow(c, i)
	if c.values[i] == nil {
		return "", false
	}
	return *c.values[i], true
}

// Value returns row i as a Value
func (c *TextColumn) Value(i int) Value {
	checkRow(c, i)
	if c.values[i] == nil {
		return Null
	}
	return TextValue(*c.values[i])
}

// Set assigns row i; nil stores null. Intended for loaders only.
func (c *TextColumn) Set(i int, v *string) {
	checkRow(c, i)
	c.values[i] = v
}

// NullCount returns the number of null rows
func (c *TextColumn) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v == nil {
			n++
		}
	}
	return n
}

// IsNullMask returns a mask that is true at null rows
func (c *TextColumn) IsNullMask() Mask {
	mask := make(Mask, len(c.values))
	for i, v := range c.values {
		mask[i] = v == nil
	}
	return mask
}

// NotNullMask returns a mask that is true at non-null rows
func (c *TextColumn) NotNullMask() Mask {
	mask := make(Mask, len(c.values))
	for i, v := range c.values {
		mask[i] = v != nil
	}
	return mask
}

// EqualsMask is true where the row equals value. Null rows never match.
func (c *TextColumn) EqualsMask(value string) Mask {
	mask := make(Mask, len(c.values))
	for i, v := range c.values {
		mask[i] = v != nil && *v == value
	}
	return mask
}

// IsInMask is true where the row equals any of values. Null rows never match.
func (c *TextColumn) IsInMask(values ...string) Mask {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	mask := make(Mask, len(c.values))
	for i, v := range c.values {
		if v == nil {
			continue
		}
		_, mask[i] = set[*v]
	}
	return mask
}

// ToCategorical encodes the column with a dictionary built in
// first-appearance order
func (c *TextColumn) ToCategorical() *CategoricalColumn {
	dict := newEmptyDictionary(16)
	codes := make([]int32, len(c.values))
	for i, v := range c.values {
		if v == nil {
			codes[i] = NullCode
			continue
		}
		codes[i] = dict.codeOrAdd(*v)
	}
	return &CategoricalColumn{name: c.name, codes: codes, dict: dict}
}

// Rename returns a column sharing storage under a new name
func (c *TextColumn) Rename(name string) Column {
	return &TextColumn{name: name, values: c.values}
}

// Filter keeps the rows where mask is true
func (c *TextColumn) Filter(mask Mask) (Column, error) {
	if err := checkMask(c, mask); err != nil {
		return nil, err
	}
	out := make([]*string, 0, countTrue(mask))
	for i, keep := range mask {
		if keep {
			out = append(out, c.values[i])
		}
	}
	return &TextColumn{name: c.name, values: out}, nil
}

// Gather builds a column from source rows; -1 yields null
func (c *TextColumn) Gather(indices []int) (Column, error) {
	if err := checkIndices(c, indices); err != nil {
		return nil, err
	}
	out := make([]*string, len(indices))
	for k, idx := range indices {
		if idx >= 0 {
			out[k] = c.values[idx]
		}
	}
	return &TextColumn{name: c.name, values: out}, nil
}

func (c *TextColumn) appendKey(dst []byte, i int, _ bool) []byte {
	return append(dst, *c.values[i]...)
}

func (c *TextColumn) concatWith(name string, parts []Column) (Column, error) {
	total := 0
	for _, p := range parts {
		if !p.DataType().IsString() {
			return nil, concatMismatch(name, c, p)
		}
		total += p.Len()
	}

	out := make([]*string, 0, total)
	for _, p := range parts {
		switch t := p.(type) {
		case *TextColumn:
			out = append(out, t.values...)
		case *CategoricalColumn:
			out = append(out, t.toRefs()...)
		}
	}
	return &TextColumn{name: name, values: out}, nil
}

func (c *TextColumn) coalesceWith(name string, right Column, leftIdx, rightIdx []int) (Column, error) {
	if !right.DataType().IsString() {
		return nil, keyMismatch(c, right)
	}

	out := make([]*string, len(leftIdx))
	for k := range leftIdx {
		if idx := leftIdx[k]; idx >= 0 {
			out[k] = c.values[idx]
			continue
		}
		idx := rightIdx[k]
		if idx < 0 || right.IsNull(idx) {
			continue
		}
		s := stringAt(right, idx)
		out[k] = &s
	}
	return &TextColumn{name: name, values: out}, nil
}

// stringAt decodes non-null row i of a text or categorical column
func stringAt(c Column, i int) string {
	switch t := c.(type) {
	case *TextColumn:
		return *t.values[i]
	case *CategoricalColumn:
		return t.dict.values[t.codes[i]]
	}
	return c.Value(i).String()
}
