package hashjoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tabula/pkg/columnar"
	"github.com/ajitpratap0/tabula/pkg/errors"
)

var (
	inner = Policy{}
	left  = Policy{KeepUnmatchedLeft: true}
	right = Policy{KeepUnmatchedRight: true}
	outer = Policy{KeepUnmatchedLeft: true, KeepUnmatchedRight: true}
)

func ints(t *testing.T, name string, v ...int64) columnar.Column {
	t.Helper()
	col, err := columnar.NewInt64(name, v, nil)
	require.NoError(t, err)
	return col
}

func TestJoin_LeftFanOut(t *testing.T) {
	l := ints(t, "k", 1, 2, 1)
	r := ints(t, "k", 1, 3)

	pairs, stats, err := Join([]columnar.Column{l}, []columnar.Column{r}, columnar.DefaultSeparator, left)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, pairs.Left)
	assert.Equal(t, []int{0, -1, 0}, pairs.Right)
	assert.Equal(t, 2, stats.Matches)
	assert.Equal(t, 1, stats.UnmatchedLeft)
	assert.Equal(t, 2, stats.BuildKeys)
}

func TestJoin_RowCountIdentities(t *testing.T) {
	// unique keys on both sides, 2 in common
	l := ints(t, "k", 1, 2, 3, 4)
	r := ints(t, "k", 3, 4, 5)

	tests := []struct {
		name   string
		policy Policy
		want   int
	}{
		{"inner", inner, 2},
		{"left", left, 4},
		{"right", right, 3},
		{"outer", outer, 4 + 3 - 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, _, err := Join([]columnar.Column{l}, []columnar.Column{r}, columnar.DefaultSeparator, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pairs.Len())
		})
	}
}

func TestJoin_OuterAppendsUnmatchedRight(t *testing.T) {
	l := ints(t, "k", 1, 2)
	r := ints(t, "k", 5, 2, 6)

	pairs, stats, err := Join([]columnar.Column{l}, []columnar.Column{r}, columnar.DefaultSeparator, outer)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, -1, -1}, pairs.Left)
	assert.Equal(t, []int{-1, 1, 0, 2}, pairs.Right)
	assert.Equal(t, 2, stats.UnmatchedRight)
}

func TestJoin_NullKeysNeverMatch(t *testing.T) {
	l, err := columnar.NewText("k", []string{"a", ""}, []bool{false, true})
	require.NoError(t, err)
	r, err := columnar.NewCategorical("k", []string{"", "a"}, []bool{true, false})
	require.NoError(t, err)

	pairs, stats, err := Join([]columnar.Column{l}, []columnar.Column{r}, columnar.DefaultSeparator, outer)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, -1}, pairs.Left)
	assert.Equal(t, []int{1, -1, 0}, pairs.Right)
	assert.Equal(t, 2, stats.NullKeyRows)

	pairs, _, err = Join([]columnar.Column{l}, []columnar.Column{r}, columnar.DefaultSeparator, inner)
	require.NoError(t, err)
	assert.Equal(t, 1, pairs.Len())
}

func TestJoin_MultiKey(t *testing.T) {
	la := ints(t, "a", 1, 1, 2)
	lb, err := columnar.NewText("b", []string{"x", "y", "x"}, nil)
	require.NoError(t, err)
	ra := ints(t, "a", 1, 2)
	rb, err := columnar.NewText("b", []string{"y", "y"}, nil)
	require.NoError(t, err)

	pairs, _, err := Join([]columnar.Column{la, lb}, []columnar.Column{ra, rb}, columnar.DefaultSeparator, inner)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, pairs.Left)
	assert.Equal(t, []int{0}, pairs.Right)
}

func TestJoin_ValidationBeforeScan(t *testing.T) {
	l := ints(t, "k", 1)
	f, err := columnar.NewFloat64("k", []float64{1}, nil)
	require.NoError(t, err)

	_, _, err = Join([]columnar.Column{l}, []columnar.Column{f}, columnar.DefaultSeparator, inner)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))

	_, _, err = Join(nil, nil, columnar.DefaultSeparator, inner)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, _, err = Join([]columnar.Column{l, l}, []columnar.Column{l}, columnar.DefaultSeparator, inner)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}
