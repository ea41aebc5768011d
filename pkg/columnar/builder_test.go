package columnar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/errors"
)

func TestBuildColumn_Conversions(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		dt     DataType
		values []any
		want   []Value
	}{
		{
			name:   "int64 from mixed",
			dt:     Int64,
			values: []any{1, int32(2), 3.0, "4", nil},
			want:   []Value{IntValue(1), IntValue(2), IntValue(3), IntValue(4), Null},
		},
		{
			name:   "float64 from ints and strings",
			dt:     Float64,
			values: []any{1, "2.5", nil},
			want:   []Value{FloatValue(1), FloatValue(2.5), Null},
		},
		{
			name:   "bool from words",
			dt:     Bool,
			values: []any{"yes", "0", true, nil},
			want:   []Value{BoolValue(true), BoolValue(false), BoolValue(true), Null},
		},
		{
			name:   "date from layouts",
			dt:     Date,
			values: []any{"2024-03-01", day, day.Unix(), nil},
			want:   []Value{DateValue(day), DateValue(day), DateValue(day), Null},
		},
		{
			name:   "text keeps empty strings",
			dt:     Text,
			values: []any{"", 7, nil},
			want:   []Value{TextValue(""), TextValue("7"), Null},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := BuildColumn("c", tt.dt, tt.values)
			require.NoError(t, err)
			require.Equal(t, len(tt.want), col.Len())
			assert.Equal(t, tt.dt, col.DataType())
			for i, want := range tt.want {
				assert.Equal(t, want, col.Value(i), "row %d", i)
			}
		})
	}
}

func TestBuildColumn_ConversionError(t *testing.T) {
	_, err := BuildColumn("qty", Int64, []any{1, 2.5})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	assert.Contains(t, err.Error(), "column=qty")
	assert.Contains(t, err.Error(), "row=1")

	_, err = BuildColumn("small", Int32, []any{int64(1) << 40})
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestBuildColumnWithOptions_CategoricalThreshold(t *testing.T) {
	raw := []any{"ES", "FR", "ES", "ES", nil, "FR"}

	col, err := BuildColumnWithOptions("country", Text, raw, DefaultLoadOptions())
	require.NoError(t, err)
	cat, ok := col.(*CategoricalColumn)
	require.True(t, ok)
	assert.Equal(t, []string{"ES", "FR"}, cat.Categories())
	assert.True(t, cat.IsNull(4))

	col, err = BuildColumnWithOptions("country", Text, raw, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, Text, col.DataType())

	unique := []any{"a", "b", "c"}
	col, err = BuildColumnWithOptions("id", Text, unique, DefaultLoadOptions())
	require.NoError(t, err)
	assert.Equal(t, Text, col.DataType())
}

func TestParseDataType(t *testing.T) {
	dt, err := ParseDataType("String")
	require.NoError(t, err)
	assert.Equal(t, Text, dt)

	dt, err = ParseDataType("category")
	require.NoError(t, err)
	assert.Equal(t, Categorical, dt)

	_, err = ParseDataType("decimal")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
