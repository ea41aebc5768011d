package columnar

import (
	"github.com/ajitpratap0/tabula/pkg/errors"
)

// DefaultSeparator joins the components of a composite key.
//
// Key components are not escaped: a separator that also occurs inside text
// key values can make two different tuples encode identically. Callers with
// such data pass a different separator.
const DefaultSeparator = "|"

const (
	keyTagNull  byte = 0x00
	keyTagValue byte = 0x01
)

// KeyEncoder renders composite row keys over a fixed list of columns. Each
// component is a tag byte followed by the value bytes, so a null component
// never encodes like any string.
type KeyEncoder struct {
	cols  []Column
	codes []bool
	sep   string
	buf   []byte
}

// NewGroupKeyEncoder encodes keys for grouping. Categorical columns
// contribute their integer codes.
func NewGroupKeyEncoder(cols []Column, sep string) (*KeyEncoder, error) {
	if err := validateKeyColumns(cols, sep); err != nil {
		return nil, err
	}
	codes := make([]bool, len(cols))
	for i, c := range cols {
		codes[i] = c.DataType() == Categorical
	}
	return &KeyEncoder{cols: cols, codes: codes, sep: sep, buf: make([]byte, 0, 64)}, nil
}

// NewJoinKeyEncoders returns encoders for the two sides of a join that
// produce identical bytes for equal keys. Categorical codes are used only
// where both sides share a dictionary; otherwise values are decoded.
func NewJoinKeyEncoders(left, right []Column, sep string) (*KeyEncoder, *KeyEncoder, error) {
	if err := validateKeyColumns(left, sep); err != nil {
		return nil, nil, err
	}
	if err := validateKeyColumns(right, sep); err != nil {
		return nil, nil, err
	}
	if len(left) != len(right) {
		return nil, nil, errors.New(errors.ErrorTypeValidation, "left and right key lists differ in length").
			WithDetail("left", len(left)).
			WithDetail("right", len(right))
	}

	codes := make([]bool, len(left))
	for i := range left {
		if !KeyCompatible(left[i], right[i]) {
			return nil, nil, keyMismatch(left[i], right[i])
		}
		lc, lok := left[i].(*CategoricalColumn)
		rc, rok := right[i].(*CategoricalColumn)
		codes[i] = lok && rok && lc.dict == rc.dict
	}

	l := &KeyEncoder{cols: left, codes: codes, sep: sep, buf: make([]byte, 0, 64)}
	r := &KeyEncoder{cols: right, codes: codes, sep: sep, buf: make([]byte, 0, 64)}
	return l, r, nil
}

// GroupKey encodes row, with null components marked by a tag. The returned
// slice is reused by the next call.
func (e *KeyEncoder) GroupKey(row int) []byte {
	b := e.buf[:0]
	for i, c := range e.cols {
		if i > 0 {
			b = append(b, e.sep...)
		}
		if c.IsNull(row) {
			b = append(b, keyTagNull)
			continue
		}
		b = append(b, keyTagValue)
		b = c.appendKey(b, row, e.codes[i])
	}
	e.buf = b
	return b
}

// JoinKey encodes row, reporting false when any component is null. The
// returned slice is reused by the next call.
func (e *KeyEncoder) JoinKey(row int) ([]byte, bool) {
	b := e.buf[:0]
	for i, c := range e.cols {
		if c.IsNull(row) {
			e.buf = b
			return nil, false
		}
		if i > 0 {
			b = append(b, e.sep...)
		}
		b = append(b, keyTagValue)
		b = c.appendKey(b, row, e.codes[i])
	}
	e.buf = b
	return b, true
}

// Rows returns the row count of the key columns
func (e *KeyEncoder) Rows() int {
	return e.cols[0].Len()
}

func validateKeyColumns(cols []Column, sep string) error {
	if len(cols) == 0 {
		return errors.New(errors.ErrorTypeValidation, "at least one key column is required")
	}
	if sep == "" {
		return errors.New(errors.ErrorTypeValidation, "key separator must not be empty")
	}
	n := -1
	for _, c := range cols {
		if c == nil {
			return errors.New(errors.ErrorTypeValidation, "key column is nil")
		}
		if n < 0 {
			n = c.Len()
		}
		if c.Len() != n {
			return errors.New(errors.ErrorTypeValidation, "key columns differ in length").
				WithDetail("column", c.Name()).
				WithDetail("length", c.Len()).
				WithDetail("expected", n)
		}
	}
	return nil
}
