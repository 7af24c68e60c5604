package wal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
)

func TestSegmentSerializeRoundTrip(t *testing.T) {
	seg := Segment{
		ID: 42,
		Tables: []TableSegment{
			{
				Table: "t",
				Len:   3,
				Columns: map[string]column.Buffer{
					"x": column.NewInt64Buffer([]int64{1, 2, 3}, nil),
					"s": column.NewStringBuffer([]string{"a", "b", "c"}, nil),
				},
			},
		},
	}

	raw := Serialize(seg)
	out, err := Deserialize(raw)
	require.NoError(t, err)
	require.Equal(t, seg.ID, out.ID)
	require.Len(t, out.Tables, 1)
	require.Equal(t, 3, out.Tables[0].Len)

	xs := out.Tables[0].Columns["x"].(*column.Int64Buffer)
	require.Equal(t, []int64{1, 2, 3}, xs.Values)

	ss := out.Tables[0].Columns["s"].(*column.StringBuffer)
	require.Equal(t, []string{"a", "b", "c"}, ss.Values)
}

func TestDeserializeCorruptCRC(t *testing.T) {
	seg := Segment{ID: 1, Tables: []TableSegment{{Table: "t", Len: 1, Columns: map[string]column.Buffer{
		"x": column.NewInt64Buffer([]int64{1}, nil),
	}}}}
	raw := Serialize(seg)
	raw[len(raw)-1] ^= 0xFF

	_, err := Deserialize(raw)
	require.Error(t, err)
}

func TestWALAppendAndReplay(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	ts := TableSegment{Table: "t", Len: 2, Columns: map[string]column.Buffer{
		"x": column.NewInt64Buffer([]int64{1, 2}, nil),
	}}

	id1, err := w.Append([]TableSegment{ts})
	require.NoError(t, err)
	id2, err := w.Append([]TableSegment{ts})
	require.NoError(t, err)
	require.Greater(t, id2, id1)

	segs, err := w.Replay(1)
	require.NoError(t, err)
	require.Len(t, segs, 2)
}

func TestWALReplaySkipsSegmentsBelowFirstUnsealed(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	ts := TableSegment{Table: "t", Len: 1, Columns: map[string]column.Buffer{
		"x": column.NewInt64Buffer([]int64{1}, nil),
	}}

	_, err = w.Append([]TableSegment{ts})
	require.NoError(t, err)
	id2, err := w.Append([]TableSegment{ts})
	require.NoError(t, err)

	segs, err := w.Replay(id2)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	require.Equal(t, id2, segs[0].ID)
}

func TestWALGCDeletesSegmentsBelowSealedID(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	ts := TableSegment{Table: "t", Len: 1, Columns: map[string]column.Buffer{
		"x": column.NewInt64Buffer([]int64{1}, nil),
	}}

	id1, _ := w.Append([]TableSegment{ts})
	id2, _ := w.Append([]TableSegment{ts})

	require.NoError(t, w.GC(id2))

	_, err = w.store.Get(id1)
	require.Error(t, err)

	_, err = w.store.Get(id2)
	require.NoError(t, err)
}
