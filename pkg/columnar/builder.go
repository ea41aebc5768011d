package columnar

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

// DefaultCategoricalThreshold is the distinct/non-null ratio under which
// BuildColumnWithOptions stores a text column as categorical.
const DefaultCategoricalThreshold = 0.5

// LoadOptions tunes how loaders turn raw values into columns
type LoadOptions struct {
	// CategoricalThreshold converts a text column to categorical when its
	// distinct/non-null ratio is below the value. Zero disables conversion.
	CategoricalThreshold float64
}

// DefaultLoadOptions returns the options used when none are given
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{CategoricalThreshold: DefaultCategoricalThreshold}
}

// BuildColumn constructs a column of type dt from raw cell values. A nil
// cell becomes null. Values are converted to the column type; a value that
// cannot be converted is a data error naming the column and row.
func BuildColumn(name string, dt DataType, values []any) (Column, error) {
	return BuildColumnWithOptions(name, dt, values, LoadOptions{})
}

// BuildColumnWithOptions is BuildColumn with load options applied to text
// columns.
func BuildColumnWithOptions(name string, dt DataType, values []any, opts LoadOptions) (Column, error) {
	switch dt {
	case Int64:
		return buildDense(name, values, toInt64)
	case Int32:
		return buildDense(name, values, toInt32)
	case Float64:
		return buildDense(name, values, toFloat64)
	case Float32:
		return buildDense(name, values, func(v any) (float32, bool) {
			f, ok := toFloat64(v)
			return float32(f), ok
		})
	case Bool:
		return buildDense(name, values, toBool)
	case Date:
		return buildDense(name, values, toDate)
	case Text:
		col, err := buildText(name, values)
		if err != nil {
			return nil, err
		}
		if shouldCategorize(col, opts.CategoricalThreshold) {
			return col.ToCategorical(), nil
		}
		return col, nil
	case Categorical:
		col, err := buildText(name, values)
		if err != nil {
			return nil, err
		}
		return col.ToCategorical(), nil
	}
	return nil, errors.New(errors.ErrorTypeValidation, "unsupported column type").
		WithDetail("column", name).
		WithDetail("type", dt.String())
}

func buildDense[T Element](name string, values []any, convert func(any) (T, bool)) (Column, error) {
	col := AllocateDense[T](name, len(values))
	for i, raw := range values {
		if raw == nil {
			continue
		}
		v, ok := convert(raw)
		if !ok {
			return nil, conversionError(name, i, raw, col.DataType())
		}
		col.Set(i, v)
	}
	return col, nil
}

func buildText(name string, values []any) (*TextColumn, error) {
	col := AllocateText(name, len(values))
	for i, raw := range values {
		if raw == nil {
			continue
		}
		s, ok := toText(raw)
		if !ok {
			return nil, conversionError(name, i, raw, Text)
		}
		col.values[i] = &s
	}
	return col, nil
}

func shouldCategorize(col *TextColumn, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	distinct := make(map[string]struct{})
	nonNull := 0
	for _, v := range col.values {
		if v == nil {
			continue
		}
		nonNull++
		distinct[*v] = struct{}{}
	}
	if nonNull == 0 {
		return false
	}
	return float64(len(distinct))/float64(nonNull) < threshold
}

func conversionError(name string, row int, raw any, dt DataType) error {
	return errors.Newf(errors.ErrorTypeData, "cannot convert %T value to %s", raw, dt).
		WithDetail("column", name).
		WithDetail("row", row)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	case float32:
		return toInt64(float64(x))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toInt32(v any) (int32, bool) {
	n, ok := toInt64(v)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
		return false, false
	}
	if n, ok := toInt64(v); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// ParseDate parses the date text forms accepted by the loader: RFC 3339,
// "2006-01-02 15:04:05" and "2006-01-02". Results are UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func toDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		return ParseDate(x)
	}
	if n, ok := toInt64(v); ok {
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

func toText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	}
	if n, ok := toInt64(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}
