// Package columnar provides the typed column storage of tabula
package columnar

import (
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// DataType represents the data type of a column
type DataType int

const (
	Int64 DataType = iota
	Int32
	Float64
	Float32
	Bool
	Date
	Text
	Categorical
)

var dataTypeNames = [...]string{
	Int64:       "int64",
	Int32:       "int32",
	Float64:     "float64",
	Float32:     "float32",
	Bool:        "bool",
	Date:        "date",
	Text:        "text",
	Categorical: "categorical",
}

// String returns the lowercase name of the data type
func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return "unknown"
	}
	return dataTypeNames[t]
}

// IsNumeric reports whether the type supports arithmetic and numeric aggregates
func (t DataType) IsNumeric() bool {
	switch t {
	case Int64, Int32, Float64, Float32:
		return true
	default:
		return false
	}
}

// IsString reports whether the type stores strings (text or categorical).
// String-typed join keys are interchangeable across the two representations.
func (t DataType) IsString() bool {
	return t == Text || t == Categorical
}

// ParseDataType resolves a type name as used in configuration files and
// loader schemas. Matching is case-insensitive; "string" is accepted for text
// and "timestamp" for date.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int64", "int", "integer":
		return Int64, nil
	case "int32":
		return Int32, nil
	case "float64", "float", "double":
		return Float64, nil
	case "float32":
		return Float32, nil
	case "bool", "boolean":
		return Bool, nil
	case "date", "timestamp", "datetime":
		return Date, nil
	case "text", "string":
		return Text, nil
	case "categorical", "category":
		return Categorical, nil
	}
	return 0, errors.New(errors.ErrorTypeValidation, "unknown data type").
		WithDetail("type", name)
}

// Element is the closed set of value types stored by dense columns
type Element interface {
	int64 | int32 | float64 | float32 | bool | time.Time
}

// Numeric is the subset of Element that supports arithmetic
type Numeric interface {
	int64 | int32 | float64 | float32
}

// Mask is a non-nullable boolean row selector, one entry per row
type Mask []bool

// Column is the capability set shared by every column variant.
//
// The interface is sealed: the only implementations are DenseColumn,
// TextColumn and CategoricalColumn. Grouping and join code dispatches on this
// contract without knowing the concrete kind.
type Column interface {
	// Name returns the column name
	Name() string
	// Len returns the number of rows, constant after construction
	Len() int
	// DataType returns the storage type
	DataType() DataType
	// IsNull reports whether row i is null. Panics with an out_of_range
	// error when i is outside [0, Len).
	IsNull(i int) bool
	// Value returns row i as a type-erased Value. Not for hot paths.
	Value(i int) Value
	// NullCount returns the number of null rows
	NullCount() int
	// IsNullMask returns a mask that is true exactly at null rows
	IsNullMask() Mask
	// Filter keeps the rows where mask is true, preserving order
	Filter(mask Mask) (Column, error)
	// Gather builds a column whose row k is source row indices[k], or null
	// when indices[k] is -1
	Gather(indices []int) (Column, error)
	// Rename returns a column sharing this column's storage under a new name
	Rename(name string) Column

	// appendKey appends the canonical key bytes of non-null row i. When
	// codes is true, categorical columns append their integer code instead
	// of the decoded string.
	appendKey(dst []byte, i int, codes bool) []byte
	// concatWith stacks parts (the receiver is parts[0]) into one column
	concatWith(name string, parts []Column) (Column, error)
	// coalesceWith builds a join key column: row k takes this column at
	// leftIdx[k], or right at rightIdx[k] when leftIdx[k] is -1
	coalesceWith(name string, right Column, leftIdx, rightIdx []int) (Column, error)
}

// NumericColumn is implemented by dense numeric columns and exposes rows as
// float64 without boxing.
type NumericColumn interface {
	Column
	// Float returns row i converted to float64. The result for a null row is
	// the zero value; check IsNull first.
	Float(i int) float64
}

// AsNumeric returns c as a NumericColumn when its type is numeric
func AsNumeric(c Column) (NumericColumn, bool) {
	if c == nil || !c.DataType().IsNumeric() {
		return nil, false
	}
	n, ok := c.(NumericColumn)
	return n, ok
}

func checkRow(c Column, i int) {
	if i < 0 || i >= c.Len() {
		panic(errors.New(errors.ErrorTypeOutOfRange, "row index out of range").
			WithDetail("column", c.Name()).
			WithDetail("index", i).
			WithDetail("length", c.Len()))
	}
}

func checkMask(c Column, mask Mask) error {
	if len(mask) != c.Len() {
		return errors.New(errors.ErrorTypeValidation, "mask length does not match column length").
			WithDetail("column", c.Name()).
			WithDetail("mask_length", len(mask)).
			WithDetail("length", c.Len())
	}
	return nil
}

func countTrue(mask Mask) int {
	n := 0
	for _, v := range mask {
		if v {
			n++
		}
	}
	return n
}
