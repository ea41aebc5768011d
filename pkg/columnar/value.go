package columnar

import (
	"math"
	"strconv"
	"time"
)

// Kind is the tag of a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindDate
)

// Value is the bounded escape hatch for type-erased cell access: a tagged
// union of the cell kinds a column can hold. Values are comparable and can be
// used as map keys. Dates are held as UTC nanoseconds.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Null is the null Value
var Null = Value{}

// IntValue wraps an integer
func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

// FloatValue wraps a float
func FloatValue(v float64) Value { return Value{kind: KindFloat, f: v} }

// TextValue wraps a string
func TextValue(v string) Value { return Value{kind: KindText, s: v} }

// BoolValue wraps a boolean
func BoolValue(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// DateValue wraps a point in time
func DateValue(v time.Time) Value { return Value{kind: KindDate, i: v.UnixNano()} }

// Kind returns the tag
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer payload; floats are truncated, booleans map to 0/1
func (v Value) Int() int64 {
	switch v.kind {
	case KindFloat:
		return int64(v.f)
	case KindInt, KindBool, KindDate:
		return v.i
	}
	return 0
}

// Float returns the numeric payload as float64, NaN for non-numeric kinds
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	}
	return math.NaN()
}

// Text returns the string payload
func (v Value) Text() string { return v.s }

// Bool returns the boolean payload
func (v Value) Bool() bool { return v.kind == KindBool && v.i != 0 }

// Date returns the date payload in UTC
func (v Value) Date() time.Time {
	if v.kind != KindDate {
		return time.Time{}
	}
	return time.Unix(0, v.i).UTC()
}

// Any returns the payload as a plain Go value (nil for null)
func (v Value) Any() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBool:
		return v.i != 0
	case KindDate:
		return v.Date()
	}
	return nil
}

// String renders the canonical text form used for reconstructed key columns.
// Null renders as the empty string; use IsNull to tell them apart.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.i != 0)
	case KindDate:
		return v.Date().Format(time.RFC3339Nano)
	}
	return ""
}
