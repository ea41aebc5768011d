// Package schema infers table schemas from decoded records, for inputs such
// as JSON lines that carry no type information of their own
package schema

import (
	"reflect"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// DefaultSampleSize is the number of records inspected per inference
const DefaultSampleSize = 1000

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}:\d{2})?`)

// Inferred describes the type chosen for one field
type Inferred struct {
	Name string
	Type columnar.DataType
	// Confidence is the share of non-null samples of the dominant kind
	Confidence  float64
	Nullable    bool
	Cardinality int
}

// Inferrer chooses column types from sample values
type Inferrer struct {
	log        *zap.Logger
	sampleSize int
}

// Option configures an Inferrer
type Option func(*Inferrer)

// WithSampleSize limits inference to the first n records; n <= 0 inspects
// every record
func WithSampleSize(n int) Option {
	return func(e *Inferrer) { e.sampleSize = n }
}

// WithLogger sets the logger receiving per-field decisions
func WithLogger(l *zap.Logger) Option {
	return func(e *Inferrer) {
		if l != nil {
			e.log = l
		}
	}
}

// NewInferrer creates an Inferrer
func NewInferrer(opts ...Option) *Inferrer {
	e := &Inferrer{log: zap.NewNop(), sampleSize: DefaultSampleSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InferSchema returns a schema covering every key that appears in records,
// ordered by name. Types come from the sampled records; a key never seen
// with a non-null value in the sample is text.
func (e *Inferrer) InferSchema(records []map[string]any) (table.Schema, []Inferred, error) {
	if len(records) == 0 {
		return table.Schema{}, nil, errors.New(errors.ErrorTypeValidation, "no records to infer a schema from")
	}

	seen := make(map[string]struct{})
	for _, rec := range records {
		for key := range rec {
			seen[key] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)

	sample := records
	if e.sampleSize > 0 && len(sample) > e.sampleSize {
		sample = sample[:e.sampleSize]
	}

	schema := table.Schema{
		Names: names,
		Types: make([]columnar.DataType, len(names)),
	}
	fields := make([]Inferred, len(names))
	values := make([]any, len(sample))
	for i, name := range names {
		for j, rec := range sample {
			values[j] = rec[name]
		}
		fields[i] = e.InferType(name, values)
		schema.Types[i] = fields[i].Type
	}
	return schema, fields, nil
}

// InferType picks the type of one field. A single observed kind wins;
// integers mixed with floats widen to float64; any other mix is text.
func (e *Inferrer) InferType(name string, values []any) Inferred {
	counts := make(map[columnar.DataType]int)
	distinct := make(map[any]struct{})
	nonNull := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		nonNull++
		counts[kindOf(v)]++
		if reflect.TypeOf(v).Comparable() {
			distinct[v] = struct{}{}
		}
	}

	inferred := Inferred{
		Name:        name,
		Type:        columnar.Text,
		Nullable:    nonNull < len(values),
		Cardinality: len(distinct),
	}
	if nonNull == 0 {
		e.log.Debug("no values to infer from", zap.String("field", name))
		return inferred
	}

	dominant, best := columnar.Text, 0
	for dt, n := range counts {
		if n > best || (n == best && dt < dominant) {
			dominant, best = dt, n
		}
	}
	inferred.Confidence = float64(best) / float64(nonNull)

	switch {
	case len(counts) == 1:
		inferred.Type = dominant
	case len(counts) == 2 && counts[columnar.Int64] > 0 && counts[columnar.Float64] > 0:
		inferred.Type = columnar.Float64
		inferred.Confidence = 1
	}

	e.log.Debug("field type inferred",
		zap.String("field", name),
		zap.Stringer("type", inferred.Type),
		zap.Float64("confidence", inferred.Confidence),
		zap.Bool("nullable", inferred.Nullable),
		zap.Int("cardinality", inferred.Cardinality))
	return inferred
}

func kindOf(v any) columnar.DataType {
	switch x := v.(type) {
	case bool:
		return columnar.Bool
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return columnar.Int64
	case float32, float64:
		return columnar.Float64
	case time.Time:
		return columnar.Date
	case string:
		if datePattern.MatchString(x) {
			if _, ok := columnar.ParseDate(x); ok {
				return columnar.Date
			}
		}
	}
	return columnar.Text
}
