package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
)

func TestSealEmptyBatchIsNoOp(t *testing.T) {
	p := Seal(1, map[string]column.Buffer{}, 0)
	require.Nil(t, p)
}

func TestSealAndDecode(t *testing.T) {
	batch := map[string]column.Buffer{
		"x": column.NewInt64Buffer([]int64{1, 2, 3, 4, 5}, nil),
		"city": column.NewStringBuffer(
			[]string{"NYC", "SF", "NYC", "LA", "SF"}, nil),
	}

	p := Seal(7, batch, 5)
	require.NotNil(t, p)
	require.Equal(t, uint64(7), p.ID)
	require.Equal(t, 5, p.Len)
	require.Len(t, p.Subpartitions, 2)

	xs, err := p.Decode("x")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, xs.(*column.Int64Buffer).Values)

	missing, err := p.Decode("nonexistent")
	require.NoError(t, err)
	require.Equal(t, 5, missing.Len())
	require.True(t, missing.IsNull(0))
}

func TestWriteBufferSchemaUnionBackfillsNulls(t *testing.T) {
	wb := NewWriteBuffer()

	require.NoError(t, wb.Append(map[string]column.Buffer{
		"a": column.NewInt64Buffer([]int64{1, 2}, nil),
	}, 2))

	require.NoError(t, wb.Append(map[string]column.Buffer{
		"a": column.NewInt64Buffer([]int64{3}, nil),
		"b": column.NewFloatBuffer([]float64{9.5}, nil),
	}, 1))

	require.Equal(t, 3, wb.Len())

	chunk := wb.takeChunk(3)
	a := chunk["a"].(*column.Int64Buffer)
	require.Equal(t, []int64{1, 2, 3}, a.Values)

	b := chunk["b"].(*column.FloatBuffer)
	require.True(t, b.IsNull(0))
	require.True(t, b.IsNull(1))
	require.False(t, b.IsNull(2))
	require.Equal(t, 9.5, b.Values[2])
}

func TestTableSealsOnPartitionSize(t *testing.T) {
	tbl := NewTable("t")
	tbl.PartitionSize = 4

	nextID := uint64(0)
	idgen := func() uint64 { nextID++; return nextID }

	vals := []int64{1, 2, 3, 4, 5, 6}
	batch := map[string]column.Buffer{"x": column.NewInt64Buffer(vals, nil)}

	sealed, err := tbl.Ingest(batch, len(vals), idgen)
	require.NoError(t, err)
	require.Len(t, sealed, 1)
	require.Equal(t, 4, sealed[0].Len)
	require.Equal(t, 2, tbl.BufferedRows())

	final := tbl.Flush(idgen)
	require.NotNil(t, final)
	require.Equal(t, 2, final.Len)
	require.Equal(t, 0, tbl.BufferedRows())
	require.Len(t, tbl.PartitionIDs(), 2)
}

func TestRecompactPreservesValues(t *testing.T) {
	batch := map[string]column.Buffer{
		"ts": column.NewInt64Buffer([]int64{100, 200, 300}, nil),
	}
	p := Seal(1, batch, 3)

	p2, err := p.Recompact()
	require.NoError(t, err)

	out, err := p2.Decode("ts")
	require.NoError(t, err)
	require.Equal(t, []int64{100, 200, 300}, out.(*column.Int64Buffer).Values)
}
