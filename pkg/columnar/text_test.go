package columnar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextColumn_EmptyStringIsNotNull(t *testing.T) {
	col, err := NewText("name", []string{"", "bob", ""}, []bool{false, false, true})
	require.NoError(t, err)

	assert.False(t, col.IsNull(0))
	assert.True(t, col.IsNull(2))
	assert.Equal(t, 1, col.NullCount())

	// an empty-string probe matches the empty value but never the null
	assert.Equal(t, Mask{true, false, false}, col.EqualsMask(""))
	assert.Equal(t, Mask{true, true, false}, col.IsInMask("", "bob"))
	assert.Equal(t, Mask{true, true, false}, col.NotNullMask())
}

func TestTextColumn_FilterAndGather(t *testing.T) {
	col, err := NewText("name", []string{"a", "b", "c"}, []bool{false, true, false})
	require.NoError(t, err)

	out, err := col.Filter(Mask{false, true, true})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.True(t, out.IsNull(0))
	assert.Equal(t, TextValue("c"), out.Value(1))

	out, err = col.Gather([]int{2, -1, 0})
	require.NoError(t, err)
	assert.Equal(t, TextValue("c"), out.Value(0))
	assert.True(t, out.IsNull(1))
	assert.Equal(t, TextValue("a"), out.Value(2))
}

func TestTextColumn_Set(t *testing.T) {
	col := AllocateText("t", 2)
	assert.Equal(t, 2, col.NullCount())

	s := "x"
	col.Set(1, &s)
	v, ok := col.At(1)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = col.At(0)
	assert.False(t, ok)
}
