package columnar

import (
	"strconv"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// NullCode is the categorical code of a null row
const NullCode int32 = -1

// Dictionary is an append-ordered list of distinct strings with a reverse
// index. It is immutable once built, so filtered and gathered categorical
// columns share it by reference.
type Dictionary struct {
	values []string
	index  map[string]int32
}

// NewDictionary builds a dictionary from distinct values in order
func NewDictionary(values []string) (*Dictionary, error) {
	d := &Dictionary{
		values: make([]string, 0, len(values)),
		index:  make(map[string]int32, len(values)),
	}
	for _, v := range values {
		if _, dup := d.index[v]; dup {
			return nil, errors.New(errors.ErrorTypeValidation, "duplicate dictionary value").
				WithDetail("value", v)
		}
		d.add(v)
	}
	return d, nil
}

func newEmptyDictionary(capacity int) *Dictionary {
	return &Dictionary{
		values: make([]string, 0, capacity),
		index:  make(map[string]int32, capacity),
	}
}

func (d *Dictionary) add(v string) int32 {
	code := int32(len(d.values))
	d.values = append(d.values, v)
	d.index[v] = code
	return code
}

// codeOrAdd is only used while a dictionary is still under construction
func (d *Dictionary) codeOrAdd(v string) int32 {
	if code, ok := d.index[v]; ok {
		return code
	}
	return d.add(v)
}

// clone returns an independent copy that may be extended
func (d *Dictionary) clone() *Dictionary {
	c := newEmptyDictionary(len(d.values))
	for _, v := range d.values {
		c.add(v)
	}
	return c
}

// Len returns the number of categories
func (d *Dictionary) Len() int { return len(d.values) }

// Value returns the category for code
func (d *Dictionary) Value(code int32) string { return d.values[code] }

// Code resolves a category to its code
func (d *Dictionary) Code(v string) (int32, bool) {
	code, ok := d.index[v]
	return code, ok
}

// Values returns a copy of the categories in code order
func (d *Dictionary) Values() []string {
	return append([]string(nil), d.values...)
}

// CategoricalColumn stores one int32 code per row into a shared Dictionary.
// NullCode marks null rows.
type CategoricalColumn struct {
	name  string
	codes []int32
	dict  *Dictionary
}

// NewCategorical dictionary-encodes values; categories are assigned codes in
// order of first appearance.
func NewCategorical(name string, values []string, nulls []bool) (*CategoricalColumn, error) {
	if nulls != nil && len(nulls) != len(values) {
		return nil, errors.New(errors.ErrorTypeValidation, "null mask length does not match data length").
			WithDetail("column", name).
			WithDetail("data_length", len(values)).
			WithDetail("mask_length", len(nulls))
	}

	dict := newEmptyDictionary(16)
	codes := make([]int32, len(values))
	for i, v := range values {
		if nulls != nil && nulls[i] {
			codes[i] = NullCode
			continue
		}
		codes[i] = dict.codeOrAdd(v)
	}
	return &CategoricalColumn{name: name, codes: codes, dict: dict}, nil
}

// NewCategoricalFromCodes wraps existing codes and a dictionary. Every code
// must be NullCode or a valid dictionary position.
func NewCategoricalFromCodes(name string, codes []int32, dict *Dictionary) (*CategoricalColumn, error) {
	if dict == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "categorical column requires a dictionary").
			WithDetail("column", name)
	}
	for i, code := range codes {
		if code < NullCode || int(code) >= dict.Len() {
			return nil, errors.New(errors.ErrorTypeValidation, "categorical code outside dictionary").
				WithDetail("column", name).
				WithDetail("row", i).
				WithDetail("code", code).
				WithDetail("dictionary_size", dict.Len())
		}
	}
	return &CategoricalColumn{name: name, codes: codes, dict: dict}, nil
}

func (c *CategoricalColumn) Name() string       { return c.name }
func (c *CategoricalColumn) Len() int           { return len(c.codes) }
func (c *CategoricalColumn) DataType() DataType { return Categorical }

// Dictionary returns the shared dictionary
func (c *CategoricalColumn) Dictionary() *Dictionary { return c.dict }

// Categories returns the categories in code order, including ones with no
// remaining rows
func (c *CategoricalColumn) Categories() []string { return c.dict.Values() }

// Codes returns the backing code array. Callers must not modify it.
func (c *CategoricalColumn) Codes() []int32 { return c.codes }

// Code returns the code of row i (NullCode when null)
func (c *CategoricalColumn) Code(i int) int32 {
	checkRow(c, i)
	return c.codes[i]
}

// IsNull reports whether row i is null
func (c *CategoricalColumn) IsNull(i int) bool {
	checkRow(c, i)
	return c.codes[i] == NullCode
}

// At returns the category of row i and whether it is non-null
func (c *CategoricalColumn) At(i int) (string, bool) {
	checkRow(c, i)
	if c.codes[i] == NullCode {
		return "", false
	}
	return c.dict.values[c.codes[i]], true
}

// Value returns row i as a text Value
func (c *CategoricalColumn) Value(i int) Value {
	checkRow(c, i)
	if c.codes[i] == NullCode {
		return Null
	}
	return TextValue(c.dict.values[c.codes[i]])
}

// NullCount returns the number of null rows
func (c *CategoricalColumn) NullCount() int {
	n := 0
	for _, code := range c.codes {
		if code == NullCode {
			n++
		}
	}
	return n
}

// IsNullMask returns a mask that is true at null rows
func (c *CategoricalColumn) IsNullMask() Mask {
	mask := make(Mask, len(c.codes))
	for i, code := range c.codes {
		mask[i] = code == NullCode
	}
	return mask
}

// EqualsMask is true where the row's category equals value
func (c *CategoricalColumn) EqualsMask(value string) Mask {
	mask := make(Mask, len(c.codes))
	code, ok := c.dict.Code(value)
	if !ok {
		return mask
	}
	for i, v := range c.codes {
		mask[i] = v == code
	}
	return mask
}

// IsInMask is true where the row's category is any of values
func (c *CategoricalColumn) IsInMask(values ...string) Mask {
	mask := make(Mask, len(c.codes))
	wanted := make([]bool, c.dict.Len())
	resolved := false
	for _, v := range values {
		if code, ok := c.dict.Code(v); ok {
			wanted[code] = true
			resolved = true
		}
	}
	if !resolved {
		return mask
	}
	for i, code := range c.codes {
		mask[i] = code != NullCode && wanted[code]
	}
	return mask
}

// ToText decodes the column into a TextColumn
func (c *CategoricalColumn) ToText() *TextColumn {
	return &TextColumn{name: c.name, values: c.toRefs()}
}

func (c *CategoricalColumn) toRefs() []*string {
	refs := make([]*string, len(c.codes))
	for i, code := range c.codes {
		if code != NullCode {
			refs[i] = &c.dict.values[code]
		}
	}
	return refs
}

// Rename returns a column sharing storage under a new name
func (c *CategoricalColumn) Rename(name string) Column {
	return &CategoricalColumn{name: name, codes: c.codes, dict: c.dict}
}

// Filter keeps the rows where mask is true; the dictionary is shared
func (c *CategoricalColumn) Filter(mask Mask) (Column, error) {
	if err := checkMask(c, mask); err != nil {
		return nil, err
	}
	out := make([]int32, 0, countTrue(mask))
	for i, keep := range mask {
		if keep {
			out = append(out, c.codes[i])
		}
	}
	return &CategoricalColumn{name: c.name, codes: out, dict: c.dict}, nil
}

// Gather maps codes directly; -1 yields null and the dictionary is shared
func (c *CategoricalColumn) Gather(indices []int) (Column, error) {
	if err := checkIndices(c, indices); err != nil {
		return nil, err
	}
	out := make([]int32, len(indices))
	for k, idx := range indices {
		if idx < 0 {
			out[k] = NullCode
			continue
		}
		out[k] = c.codes[idx]
	}
	return &CategoricalColumn{name: c.name, codes: out, dict: c.dict}, nil
}

func (c *CategoricalColumn) appendKey(dst []byte, i int, codes bool) []byte {
	if codes {
		return strconv.AppendInt(dst, int64(c.codes[i]), 10)
	}
	return append(dst, c.dict.values[c.codes[i]]...)
}

func (c *CategoricalColumn) concatWith(name string, parts []Column) (Column, error) {
	total := 0
	shared := true
	for _, p := range parts {
		if !p.DataType().IsString() {
			return nil, concatMismatch(name, c, p)
		}
		if cat, ok := p.(*CategoricalColumn); !ok || cat.dict != c.dict {
			shared = false
		}
		total += p.Len()
	}

	dict := c.dict
	if !shared {
		dict = c.dict.clone()
	}

	codes := make([]int32, 0, total)
	for _, p := range parts {
		if shared {
			codes = append(codes, p.(*CategoricalColumn).codes...)
			continue
		}
		for i := 0; i < p.Len(); i++ {
			if p.IsNull(i) {
				codes = append(codes, NullCode)
				continue
			}
			codes = append(codes, dict.codeOrAdd(stringAt(p, i)))
		}
	}
	return &CategoricalColumn{name: name, codes: codes, dict: dict}, nil
}

func (c *CategoricalColumn) coalesceWith(name string, right Column, leftIdx, rightIdx []int) (Column, error) {
	if !right.DataType().IsString() {
		return nil, keyMismatch(c, right)
	}

	dict := c.dict
	rightCat, sameDict := right.(*CategoricalColumn)
	sameDict = sameDict && rightCat.dict == c.dict

	codes := make([]int32, len(leftIdx))
	for k := range leftIdx {
		if idx := leftIdx[k]; idx >= 0 {
			codes[k] = c.codes[idx]
			continue
		}
		idx := rightIdx[k]
		switch {
		case idx < 0 || right.IsNull(idx):
			codes[k] = NullCode
		case sameDict:
			codes[k] = rightCat.codes[idx]
		default:
			v := stringAt(right, idx)
			code, ok := dict.Code(v)
			if !ok {
				if dict == c.dict {
					dict = c.dict.clone()
				}
				code = dict.add(v)
			}
			codes[k] = code
		}
	}
	return &CategoricalColumn{name: name, codes: codes, dict: dict}, nil
}
