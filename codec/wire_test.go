package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
)

func TestColumnWireRoundTrip(t *testing.T) {
	cases := []column.Buffer{
		column.NewInt64Buffer([]int64{1, 2, 3, 4, 5}, nil),
		column.NewInt64Buffer([]int64{10, 20, 5, -100, 999999}, nil),
		column.NewFloatBuffer([]float64{1.1, 2.2, 3.3}, nil),
		column.NewStringBuffer([]string{"a", "b", "a", "c"}, nil),
		column.NewNullBuffer(4),
	}

	for i, buf := range cases {
		sc := Encode("col", buf)
		raw := EncodeColumn(sc)

		decoded, n, err := DecodeColumn(raw)
		require.NoError(t, err, "case %d", i)
		require.Equal(t, len(raw), n)

		out, err := Decode(decoded)
		require.NoError(t, err)

		orig, err := Decode(sc)
		require.NoError(t, err)
		require.Equal(t, orig, out, "case %d", i)
	}
}

func TestColumnWireRoundTripWithNulls(t *testing.T) {
	nulls := column.NewNullMask(4)
	nulls.SetNull(1)
	buf := column.NewInt64Buffer([]int64{1, 2, 3, 4}, nulls)

	sc := Encode("x", buf)
	raw := EncodeColumn(sc)

	decoded, _, err := DecodeColumn(raw)
	require.NoError(t, err)

	out, err := Decode(decoded)
	require.NoError(t, err)
	ib := out.(*column.Int64Buffer)
	require.True(t, ib.IsNull(1))
	require.False(t, ib.IsNull(0))
}

func TestDecodeColumnTruncated(t *testing.T) {
	_, _, err := DecodeColumn([]byte{0, 1})
	require.Error(t, err)
}
