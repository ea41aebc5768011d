// Package arrowio converts between tabula tables and Apache Arrow records,
// and reads and writes tables as Arrow IPC streams.
//
// Type mapping:
//
//	int64, int32, float64, float32, bool  <-> the dense column of that type
//	utf8, large_utf8                       -> Text
//	dictionary<int*, utf8>                <-> Categorical (dictionary kept verbatim)
//	date32, date64, timestamp              -> Date
//	Date                                   -> timestamp[ns, UTC]
//	Text                                   -> utf8
package arrowio

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// FromRecord copies an Arrow record into a new table. The record may be
// released once FromRecord returns.
func FromRecord(rec arrow.Record) (*table.Table, error) {
	schema := rec.Schema()
	cols := make([]columnar.Column, rec.NumCols())
	for i, arr := range rec.Columns() {
		col, err := fromArray(schema.Field(i).Name, arr)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	if len(cols) == 0 {
		return table.New(int(rec.NumRows())), nil
	}
	return table.NewFromColumns(cols...)
}

func fromArray(name string, arr arrow.Array) (columnar.Column, error) {
	switch a := arr.(type) {
	case *array.Int64:
		return columnar.NewInt64(name, copyValues(a.Int64Values()), nullMask(a))
	case *array.Int32:
		return columnar.NewInt32(name, copyValues(a.Int32Values()), nullMask(a))
	case *array.Float64:
		return columnar.NewFloat64(name, copyValues(a.Float64Values()), nullMask(a))
	case *array.Float32:
		return columnar.NewFloat32(name, copyValues(a.Float32Values()), nullMask(a))
	case *array.Boolean:
		return denseFrom(name, a, a.Value)
	case *array.Date32:
		return denseFrom(name, a, func(i int) time.Time { return a.Value(i).ToTime() })
	case *array.Date64:
		return denseFrom(name, a, func(i int) time.Time { return a.Value(i).ToTime() })
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return denseFrom(name, a, func(i int) time.Time { return a.Value(i).ToTime(unit).UTC() })
	case *array.String:
		return textFrom(name, a, a.Value), nil
	case *array.LargeString:
		return textFrom(name, a, a.Value), nil
	case *array.Dictionary:
		return categoricalFrom(name, a)
	}
	return nil, errors.New(errors.ErrorTypeTypeMismatch, "unsupported arrow type").
		WithDetail("column", name).
		WithDetail("type", arr.DataType().String())
}

func copyValues[T any](src []T) []T {
	return append(make([]T, 0, len(src)), src...)
}

func nullMask(arr arrow.Array) []bool {
	if arr.NullN() == 0 {
		return nil
	}
	mask := make([]bool, arr.Len())
	for i := range mask {
		mask[i] = arr.IsNull(i)
	}
	return mask
}

func denseFrom[T columnar.Element](name string, arr arrow.Array, at func(int) T) (*columnar.DenseColumn[T], error) {
	data := make([]T, arr.Len())
	for i := range data {
		if arr.IsValid(i) {
			data[i] = at(i)
		}
	}
	return columnar.NewDense(name, data, nullMask(arr))
}

func textFrom(name string, arr arrow.Array, at func(int) string) *columnar.TextColumn {
	refs := make([]*string, arr.Len())
	for i := range refs {
		if arr.IsValid(i) {
			s := at(i)
			refs[i] = &s
		}
	}
	return columnar.NewTextFromPointers(name, refs)
}

func categoricalFrom(name string, a *array.Dictionary) (columnar.Column, error) {
	values, ok := a.Dictionary().(*array.String)
	if !ok {
		return nil, errors.New(errors.ErrorTypeTypeMismatch, "dictionary values must be utf8").
			WithDetail("column", name).
			WithDetail("type", a.Dictionary().DataType().String())
	}

	entries := make([]string, values.Len())
	for i := range entries {
		entries[i] = values.Value(i)
	}
	dict, err := columnar.NewDictionary(entries)
	if err != nil {
		// duplicate dictionary entries: rebuild from the decoded strings
		refs := make([]*string, a.Len())
		for i := range refs {
			if a.IsNull(i) || values.IsNull(a.GetValueIndex(i)) {
				continue
			}
			s := values.Value(a.GetValueIndex(i))
			refs[i] = &s
		}
		return columnar.NewTextFromPointers(name, refs).ToCategorical(), nil
	}

	codes := make([]int32, a.Len())
	for i := range codes {
		if a.IsNull(i) || values.IsNull(a.GetValueIndex(i)) {
			codes[i] = columnar.NullCode
			continue
		}
		codes[i] = int32(a.GetValueIndex(i))
	}
	return columnar.NewCategoricalFromCodes(name, codes, dict)
}

// ToRecord builds an Arrow record holding the table's columns. The caller
// owns the record and must Release it.
func ToRecord(mem memory.Allocator, t *table.Table) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	arrays := make([]arrow.Array, len(cols))
	defer func() {
		for _, a := range arrays {
			if a != nil {
				a.Release()
			}
		}
	}()

	for i, c := range cols {
		arr, err := toArray(mem, c)
		if err != nil {
			return nil, err
		}
		arrays[i] = arr
		fields[i] = arrow.Field{Name: c.Name(), Type: arr.DataType(), Nullable: true}
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(t.RowCount())), nil
}

func toArray(mem memory.Allocator, c columnar.Column) (arrow.Array, error) {
	switch col := c.(type) {
	case *columnar.Int64Column:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(col.Values(), validity(col))
		return b.NewArray(), nil
	case *columnar.Int32Column:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(col.Values(), validity(col))
		return b.NewArray(), nil
	case *columnar.Float64Column:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(col.Values(), validity(col))
		return b.NewArray(), nil
	case *columnar.Float32Column:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(col.Values(), validity(col))
		return b.NewArray(), nil
	case *columnar.BoolColumn:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(col.Values(), validity(col))
		return b.NewArray(), nil
	case *columnar.DateColumn:
		b := array.NewTimestampBuilder(mem, arrow.FixedWidthTypes.Timestamp_ns.(*arrow.TimestampType))
		defer b.Release()
		for i, v := range col.Values() {
			if col.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(arrow.Timestamp(v.UnixNano()))
		}
		return b.NewArray(), nil
	case *columnar.TextColumn:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i := 0; i < col.Len(); i++ {
			if s, ok := col.At(i); ok {
				b.Append(s)
			} else {
				b.AppendNull()
			}
		}
		return b.NewArray(), nil
	case *columnar.CategoricalColumn:
		return dictionaryArray(mem, col), nil
	}
	return nil, errors.New(errors.ErrorTypeTypeMismatch, "column type has no arrow mapping").
		WithDetail("column", c.Name()).
		WithDetail("type", c.DataType().String())
}

func dictionaryArray(mem memory.Allocator, col *columnar.CategoricalColumn) arrow.Array {
	vb := array.NewStringBuilder(mem)
	defer vb.Release()
	vb.AppendValues(col.Categories(), nil)
	values := vb.NewArray()
	defer values.Release()

	ib := array.NewInt32Builder(mem)
	defer ib.Release()
	for _, code := range col.Codes() {
		if code == columnar.NullCode {
			ib.AppendNull()
		} else {
			ib.Append(code)
		}
	}
	indices := ib.NewArray()
	defer indices.Release()

	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	return array.NewDictionaryArray(dt, indices, values)
}

func validity(c columnar.Column) []bool {
	if c.NullCount() == 0 {
		return nil
	}
	valid := make([]bool, c.Len())
	for i := range valid {
		valid[i] = !c.IsNull(i)
	}
	return valid
}
