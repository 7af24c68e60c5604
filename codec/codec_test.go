package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
)

func TestEncodeDecodeArithmeticProgression(t *testing.T) {
	vals := []int64{100, 110, 120, 130, 140}
	buf := column.NewInt64Buffer(vals, nil)

	sc := Encode("ts", buf)
	require.Len(t, sc.Codec, 1)
	require.IsType(t, Range{}, sc.Codec[0])
	require.Empty(t, sc.Data)

	out, err := Decode(sc)
	require.NoError(t, err)
	ib, ok := out.(*column.Int64Buffer)
	require.True(t, ok)
	require.Equal(t, vals, ib.Values)
}

func TestEncodeDecodeMonotonicDelta(t *testing.T) {
	vals := []int64{5, 7, 7, 9, 20, 21, 21, 500}
	buf := column.NewInt64Buffer(vals, nil)

	sc := Encode("x", buf)
	out, err := Decode(sc)
	require.NoError(t, err)
	ib := out.(*column.Int64Buffer)
	require.Equal(t, vals, ib.Values)
}

func TestEncodeDecodeArbitraryInts(t *testing.T) {
	vals := []int64{-500, 3000, -17, 9999999, -1, 0, 42}
	buf := column.NewInt64Buffer(vals, nil)

	sc := Encode("x", buf)
	out, err := Decode(sc)
	require.NoError(t, err)
	ib := out.(*column.Int64Buffer)
	require.Equal(t, vals, ib.Values)
}

func TestEncodeDecodeWithNulls(t *testing.T) {
	vals := []int64{1, 2, 3, 4, 5}
	nulls := column.NewNullMask(5)
	nulls.SetNull(1)
	nulls.SetNull(3)
	buf := column.NewInt64Buffer(vals, nulls)

	sc := Encode("x", buf)
	out, err := Decode(sc)
	require.NoError(t, err)
	ib := out.(*column.Int64Buffer)
	require.True(t, ib.IsNull(1))
	require.True(t, ib.IsNull(3))
	require.False(t, ib.IsNull(0))
	require.Equal(t, int64(1), ib.Values[0])
	require.Equal(t, int64(5), ib.Values[4])
}

func TestEncodeDecodeFloats(t *testing.T) {
	vals := []float64{1.5, 1.5, 1.50001, 2.7, -3.2, 0, 100.25}
	buf := column.NewFloatBuffer(vals, nil)

	sc := Encode("f", buf)
	require.IsType(t, Gorilla{}, sc.Codec[len(sc.Codec)-1])

	out, err := Decode(sc)
	require.NoError(t, err)
	fb := out.(*column.FloatBuffer)
	require.Equal(t, vals, fb.Values)
}

func TestEncodeDecodeLowCardinalityStrings(t *testing.T) {
	vals := []string{"GET", "POST", "GET", "GET", "DELETE", "POST", "GET"}
	buf := column.NewStringBuffer(vals, nil)

	sc := Encode("method", buf)
	require.IsType(t, DictLookup{}, sc.Codec[len(sc.Codec)-1])

	out, err := Decode(sc)
	require.NoError(t, err)
	sb := out.(*column.StringBuffer)
	require.Equal(t, vals, sb.Values)
}

func TestEncodeDecodeHighCardinalityStrings(t *testing.T) {
	vals := []string{"alpha-1", "bravo-2", "charlie-3", "delta-4", "echo-5"}
	buf := column.NewStringBuffer(vals, nil)

	sc := Encode("id", buf)
	require.IsType(t, UnpackStrings{}, sc.Codec[len(sc.Codec)-1])

	out, err := Decode(sc)
	require.NoError(t, err)
	sb := out.(*column.StringBuffer)
	require.Equal(t, vals, sb.Values)
}

func TestEncodeDecodeAllNullColumn(t *testing.T) {
	buf := column.NewNullBuffer(10)
	sc := Encode("n", buf)
	require.Empty(t, sc.Codec)
	require.Empty(t, sc.Data)

	out, err := Decode(sc)
	require.NoError(t, err)
	require.Equal(t, 10, out.Len())
	require.True(t, out.IsNull(0))
}

func TestEncodeLargeIntColumnCompresses(t *testing.T) {
	vals := make([]int64, 5000)
	for i := range vals {
		vals[i] = int64(i % 7)
	}
	buf := column.NewInt64Buffer(vals, nil)

	sc := Encode("repetitive", buf)

	var sawLZ4 bool
	for _, op := range sc.Codec {
		if _, ok := op.(LZ4); ok {
			sawLZ4 = true
		}
	}
	require.True(t, sawLZ4, "a highly repetitive 5000-row column should compress under LZ4")

	out, err := Decode(sc)
	require.NoError(t, err)
	ib := out.(*column.Int64Buffer)
	require.Equal(t, vals, ib.Values)
}

func TestDictionaryCollisionTrackerDetectsCollision(t *testing.T) {
	tr := newDictCollisionTracker()
	require.NoError(t, tr.Track(1, "a"))
	require.NoError(t, tr.Track(1, "a"))
	err := tr.Track(1, "b")
	require.Error(t, err)
	require.True(t, tr.HasCollision())
}

func TestPackUnpackStrings(t *testing.T) {
	vals := []string{"", "a", "bb", "ccc", ""}
	packed := packStrings(vals)
	out, err := unpackStrings(packed, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, out)
}

func TestUnpackStringsTruncated(t *testing.T) {
	_, err := unpackStrings([]byte{0, 0}, 1)
	require.Error(t, err)
}

func TestGorillaRoundTrip(t *testing.T) {
	vals := []float64{0, 1, 1, 1, 2.5, -2.5, 1e10, -1e-10}
	enc := newGorillaEncoder()
	for _, v := range vals {
		enc.write(v)
	}
	data := enc.bytes()
	enc.release()

	out := decodeGorilla(data, len(vals))
	require.Equal(t, vals, out)
}

func TestBuildDictionaryRoundTrip(t *testing.T) {
	vals := []string{"x", "y", "x", "z", "y", "y"}
	codes, dict := buildDictionary(vals)
	require.Len(t, codes, len(vals))

	out, err := lookupDictionary(toInt64(codes), dict)
	require.NoError(t, err)
	require.Equal(t, vals, out)
}

func toInt64(us []uint64) []int64 {
	out := make([]int64, len(us))
	for i, u := range us {
		out[i] = int64(u)
	}

	return out
}

func TestNarrowWidenIntsRoundTrip(t *testing.T) {
	cases := [][]int64{
		{0, 1, 2, 255},
		{0, 1000, 65535},
		{0, 1 << 20, 1<<32 - 1},
		{-5, 0, 5, 1 << 40},
	}

	for _, vs := range cases {
		tag, bytes := narrowInts(vs, true)
		out := widenInts(tag, bytes)
		require.Equal(t, vs, out, "tag=%s", tag)
	}
}

func TestEncodeFloatRangeIsAlwaysEmpty(t *testing.T) {
	sc := Encode("f", column.NewFloatBuffer([]float64{1, 2, 3}, nil))
	require.True(t, sc.Range.Empty)
	_ = format.TypeFloat
}
