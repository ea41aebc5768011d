package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

func TestInferType(t *testing.T) {
	e := NewInferrer(WithLogger(zaptest.NewLogger(t)))

	tests := []struct {
		name     string
		values   []any
		want     columnar.DataType
		nullable bool
	}{
		{"ints", []any{int64(1), int64(2)}, columnar.Int64, false},
		{"widened", []any{int64(1), 2.5, nil}, columnar.Float64, true},
		{"bools", []any{true, false}, columnar.Bool, false},
		{"dates", []any{"2024-01-02", "2024-01-03 10:00:00"}, columnar.Date, false},
		{"not a date", []any{"2024-13-45"}, columnar.Text, false},
		{"text", []any{"ES", "FR"}, columnar.Text, false},
		{"mixed", []any{"ES", int64(1)}, columnar.Text, false},
		{"all null", []any{nil, nil}, columnar.Text, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.InferType(tt.name, tt.values)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.nullable, got.Nullable)
		})
	}
}

func TestInferType_Statistics(t *testing.T) {
	got := NewInferrer().InferType("country", []any{"ES", "FR", "ES", int64(3)})
	assert.Equal(t, columnar.Text, got.Type)
	assert.Equal(t, 0.75, got.Confidence)
	assert.Equal(t, 3, got.Cardinality)
}

func TestInferSchema(t *testing.T) {
	records := []map[string]any{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "score": 1.5},
		{"id": int64(3), "late": true},
	}

	schema, fields, err := NewInferrer(WithSampleSize(2)).InferSchema(records)
	require.NoError(t, err)

	// late appears only after the sample, so it is kept as text
	assert.Equal(t, []string{"id", "late", "name", "score"}, schema.Names)
	assert.Equal(t, []columnar.DataType{columnar.Int64, columnar.Text, columnar.Text, columnar.Float64}, schema.Types)
	assert.True(t, fields[2].Nullable)
	assert.False(t, fields[0].Nullable)
}

func TestInferSchema_Empty(t *testing.T) {
	_, _, err := NewInferrer().InferSchema(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
