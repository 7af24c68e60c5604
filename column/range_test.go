package column

import "testing"

import "github.com/stretchr/testify/require"

func TestRangeDisjoint(t *testing.T) {
	a := NewRange(0, 100)
	b := NewRange(101, 200)
	require.True(t, a.Disjoint(b))

	c := NewRange(50, 150)
	require.False(t, a.Disjoint(c))
}

func TestRangeEmptyIsDisjoint(t *testing.T) {
	a := EmptyRange()
	b := NewRange(0, 10)
	require.True(t, a.Disjoint(b))
	require.False(t, b.Contains(0) && a.Contains(0))
}

func TestRangeContains(t *testing.T) {
	r := NewRange(1000, 66535)
	require.True(t, r.Contains(65000))
	require.False(t, r.Contains(999))
	require.False(t, r.Contains(66536))
}

func TestNullMaskBasic(t *testing.T) {
	m := NewNullMask(10)
	m.SetNull(3)
	m.SetNull(9)

	require.True(t, m.IsNull(3))
	require.True(t, m.IsNull(9))
	require.False(t, m.IsNull(0))
	require.Equal(t, 2, m.Count())
	require.False(t, m.AllNull())
}

func TestNilNullMaskHasNoNulls(t *testing.T) {
	var m *NullMask
	require.False(t, m.IsNull(0))
	require.Equal(t, 0, m.Count())
}
