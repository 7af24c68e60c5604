package storage

import "github.com/cswinter/locustdb/column"

// bufferBytes estimates a decoded execution buffer's resident size, used to
// charge the decoded-bytes budget (spec.md §6's "decoded table bytes"
// budget). It is a size estimate, not an exact accounting: string buffers in
// particular undercount by the runtime's string header overhead.
func bufferBytes(buf column.Buffer) int64 {
	if buf == nil {
		return 0
	}

	var size int64

	switch b := buf.(type) {
	case *column.Int64Buffer:
		size = int64(len(b.Values)) * 8
	case *column.Uint64Buffer:
		size = int64(len(b.Values)) * 8
	case *column.FloatBuffer:
		size = int64(len(b.Values)) * 8
	case *column.StringBuffer:
		for _, s := range b.Values {
			size += int64(len(s))
		}
	case *column.NullBuffer:
		size = 0
	case *column.MixedBuffer:
		size = int64(len(b.Values)) * 24
	}

	if nulls := buf.Nulls(); nulls != nil {
		size += int64((nulls.Len() + 7) / 8)
	}

	return size
}

// appendBuffer concatenates b onto a (a may be nil, meaning "start a new
// buffer"), used by Manager.Compact to merge a column's values across
// multiple partitions ahead of re-sealing. Differing concrete types across
// partitions indicate a schema change mid-table, which this port does not
// support reconciling at compaction time.
func appendBuffer(a, b column.Buffer) column.Buffer {
	if a == nil {
		return cloneBuffer(b)
	}

	switch av := a.(type) {
	case *column.Int64Buffer:
		bv := b.(*column.Int64Buffer)
		nulls := concatNulls(av, bv, len(av.Values), len(bv.Values))
		return column.NewInt64Buffer(append(append([]int64(nil), av.Values...), bv.Values...), nulls)
	case *column.Uint64Buffer:
		bv := b.(*column.Uint64Buffer)
		nulls := concatNulls(av, bv, len(av.Values), len(bv.Values))
		return column.NewUint64Buffer(append(append([]uint64(nil), av.Values...), bv.Values...), nulls)
	case *column.FloatBuffer:
		bv := b.(*column.FloatBuffer)
		nulls := concatNulls(av, bv, len(av.Values), len(bv.Values))
		return column.NewFloatBuffer(append(append([]float64(nil), av.Values...), bv.Values...), nulls)
	case *column.StringBuffer:
		bv := b.(*column.StringBuffer)
		nulls := concatNulls(av, bv, len(av.Values), len(bv.Values))
		return column.NewStringBuffer(append(append([]string(nil), av.Values...), bv.Values...), nulls)
	case *column.NullBuffer:
		bv := b.(*column.NullBuffer)
		return column.NewNullBuffer(av.N + bv.N)
	default:
		return a
	}
}

func cloneBuffer(b column.Buffer) column.Buffer {
	switch v := b.(type) {
	case *column.Int64Buffer:
		return column.NewInt64Buffer(append([]int64(nil), v.Values...), v.Nulls())
	case *column.Uint64Buffer:
		return column.NewUint64Buffer(append([]uint64(nil), v.Values...), v.Nulls())
	case *column.FloatBuffer:
		return column.NewFloatBuffer(append([]float64(nil), v.Values...), v.Nulls())
	case *column.StringBuffer:
		return column.NewStringBuffer(append([]string(nil), v.Values...), v.Nulls())
	case *column.NullBuffer:
		return column.NewNullBuffer(v.N)
	default:
		return b
	}
}

func concatNulls(a, b column.Buffer, lenA, lenB int) *column.NullMask {
	if a.Nulls() == nil && b.Nulls() == nil {
		return nil
	}

	merged := column.NewNullMask(lenA + lenB)
	for i := 0; i < lenA; i++ {
		if a.IsNull(i) {
			merged.SetNull(i)
		}
	}
	for i := 0; i < lenB; i++ {
		if b.IsNull(i) {
			merged.SetNull(lenA + i)
		}
	}

	return merged
}
