package json

import (
	"io"
	"math"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/schema"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// WriteLines writes t as JSON lines: one object per row with keys in column
// order. Nulls and non-finite floats are written as null; dates as
// RFC 3339 strings.
func WriteLines(w io.Writer, t *table.Table) error {
	return writeRows(NewStreamingEncoder(w, false), t)
}

// WriteArray writes t as a single JSON array of row objects
func WriteArray(w io.Writer, t *table.Table, pretty bool) error {
	enc := NewStreamingEncoder(w, true)
	enc.SetPretty(pretty)
	return writeRows(enc, t)
}

func writeRows(enc *StreamingEncoder, t *table.Table) error {
	names := t.ColumnNames()
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := Marshal(name)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to encode column name").
				WithDetail("column", name)
		}
		keys[i] = k
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	it := t.Rows()
	for it.Next() {
		buf.Reset()
		buf.WriteByte('{')
		for i, v := range it.Row() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[i])
			buf.WriteByte(':')
			if err := appendValue(buf, v); err != nil {
				return errors.Wrap(err, errors.ErrorTypeData, "failed to encode cell").
					WithDetail("column", names[i]).
					WithDetail("row", it.Index())
			}
		}
		buf.WriteByte('}')
		if err := enc.WriteRaw(buf.Bytes()); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write JSON row").
				WithDetail("row", it.Index())
		}
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish JSON output")
	}
	return nil
}

type byteWriter interface {
	io.Writer
	WriteString(s string) (int, error)
}

func appendValue(w byteWriter, v columnar.Value) error {
	if v.IsNull() {
		_, err := w.WriteString("null")
		return err
	}
	if v.Kind() == columnar.KindFloat {
		if f := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			_, err := w.WriteString("null")
			return err
		}
	}
	data, err := Marshal(v.Any())
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadLines loads a stream of JSON objects into a table with the given
// schema. Object keys match column names ignoring case; absent keys and
// JSON null are null cells, unknown keys are ignored. Integral numbers are
// decoded as int64 and all others as float64 before conversion to the
// schema type.
func ReadLines(r io.Reader, s table.Schema, opts columnar.LoadOptions) (*table.Table, error) {
	known := make(map[string]struct{}, len(s.Names))
	for _, name := range s.Names {
		known[strings.ToLower(name)] = struct{}{}
	}
	objects, err := decodeObjects(r, func(key string) bool {
		_, ok := known[strings.ToLower(key)]
		return ok
	})
	if err != nil {
		return nil, err
	}
	return buildTable(objects, s, opts)
}

// ReadLinesInferred loads a stream of JSON objects, choosing the schema
// with inf. Columns are every key seen, ordered by name.
func ReadLinesInferred(r io.Reader, inf *schema.Inferrer, opts columnar.LoadOptions) (*table.Table, error) {
	objects, err := decodeObjects(r, nil)
	if err != nil {
		return nil, err
	}
	s, _, err := inf.InferSchema(objects)
	if err != nil {
		return nil, err
	}
	return buildTable(objects, s, opts)
}

// decodeObjects reads every object of the stream with cells converted to
// loader values. Keys rejected by keep are dropped; nil keeps all.
func decodeObjects(r io.Reader, keep func(key string) bool) ([]map[string]any, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()

	var objects []map[string]any
	for n := 0; ; n++ {
		var obj map[string]interface{}
		if err := dec.Decode(&obj); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode JSON object").
				WithDetail("object", n)
		}
		for key, raw := range obj {
			if keep != nil && !keep(key) {
				delete(obj, key)
				continue
			}
			cell, err := cellOf(raw)
			if err != nil {
				return nil, err.WithDetail("object", n).WithDetail("key", key)
			}
			obj[key] = cell
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

func buildTable(objects []map[string]any, s table.Schema, opts columnar.LoadOptions) (*table.Table, error) {
	positions := make(map[string]int, len(s.Names))
	for i, name := range s.Names {
		positions[strings.ToLower(name)] = i
	}

	rows := make([][]any, len(objects))
	for n, obj := range objects {
		row := make([]any, len(s.Names))
		for key, cell := range obj {
			if pos, ok := positions[strings.ToLower(key)]; ok {
				row[pos] = cell
			}
		}
		rows[n] = row
	}
	return table.FromRows(s, rows, opts)
}

func cellOf(raw interface{}) (any, *errors.Error) {
	switch v := raw.(type) {
	case nil, string, bool:
		return v, nil
	case gojson.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON number")
		}
		return f, nil
	}
	return nil, errors.New(errors.ErrorTypeData, "nested JSON values are not supported")
}
