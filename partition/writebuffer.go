// Package partition implements the immutable, sealed unit of columnar data
// (Partition, grouped into Subpartitions) and the mutable WriteBuffer/Table
// that accumulate ingested rows ahead of a seal, following spec.md §3's data
// model and §4.5's seal procedure.
//
// Grounded on the teacher's blob.go/blob_set.go: a Blob there holds many
// fixed-cardinality metric series sharing one length; a Partition here holds
// many columns sharing one row count, generalized to variable-length
// ingestion (new columns can appear mid-stream) and grouped into
// Subpartitions instead of one flat blob.
package partition

import (
	"fmt"
	"sync"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/format"
)

// DefaultPartitionSize is the row count a write buffer seals at, per spec §3.
const DefaultPartitionSize = 65536

// columnBuilder accumulates one column's values row-by-row across ingestion
// batches, including null backfill for rows where the column was absent
// (spec §3: "missing columns in older [batches] are implicitly all-null").
type columnBuilder struct {
	typ     format.ValueType
	ints    []int64
	uints   []uint64
	floats  []float64
	strings []string
	nulls   []bool
}

func newColumnBuilder(typ format.ValueType, backfill int) *columnBuilder {
	cb := &columnBuilder{typ: typ}
	cb.growNulls(backfill)

	return cb
}

func (cb *columnBuilder) growNulls(n int) {
	for i := 0; i < n; i++ {
		cb.appendNull()
	}
}

func (cb *columnBuilder) appendNull() {
	switch cb.typ {
	case format.TypeInt64:
		cb.ints = append(cb.ints, 0)
	case format.TypeUint64:
		cb.uints = append(cb.uints, 0)
	case format.TypeFloat:
		cb.floats = append(cb.floats, 0)
	case format.TypeString:
		cb.strings = append(cb.strings, "")
	}
	cb.nulls = append(cb.nulls, true)
}

func (cb *columnBuilder) len() int { return len(cb.nulls) }

// appendBuffer appends b's values onto cb, which must share cb's type.
func (cb *columnBuilder) appendBuffer(b column.Buffer) error {
	if b.Type() != cb.typ {
		return fmt.Errorf("%w: column has type %s, batch supplied %s", errs.ErrTypeMismatch, cb.typ, b.Type())
	}

	switch v := b.(type) {
	case *column.Int64Buffer:
		cb.ints = append(cb.ints, v.Values...)
		for i := range v.Values {
			cb.nulls = append(cb.nulls, v.IsNull(i))
		}
	case *column.Uint64Buffer:
		cb.uints = append(cb.uints, v.Values...)
		for i := range v.Values {
			cb.nulls = append(cb.nulls, v.IsNull(i))
		}
	case *column.FloatBuffer:
		cb.floats = append(cb.floats, v.Values...)
		for i := range v.Values {
			cb.nulls = append(cb.nulls, v.IsNull(i))
		}
	case *column.StringBuffer:
		cb.strings = append(cb.strings, v.Values...)
		for i := range v.Values {
			cb.nulls = append(cb.nulls, v.IsNull(i))
		}
	case *column.NullBuffer:
		cb.growNulls(v.Len())
	default:
		return fmt.Errorf("%w: unsupported ingestion buffer type", errs.ErrTypeMismatch)
	}

	return nil
}

// buffer materializes the builder's accumulated rows as a column.Buffer.
func (cb *columnBuilder) buffer() column.Buffer {
	var mask *column.NullMask
	anyNull := false
	for _, n := range cb.nulls {
		if n {
			anyNull = true

			break
		}
	}
	if anyNull {
		mask = column.NewNullMask(len(cb.nulls))
		for i, n := range cb.nulls {
			if n {
				mask.SetNull(i)
			}
		}
	}

	switch cb.typ {
	case format.TypeInt64:
		return column.NewInt64Buffer(append([]int64(nil), cb.ints...), mask)
	case format.TypeUint64:
		return column.NewUint64Buffer(append([]uint64(nil), cb.uints...), mask)
	case format.TypeFloat:
		return column.NewFloatBuffer(append([]float64(nil), cb.floats...), mask)
	case format.TypeString:
		return column.NewStringBuffer(append([]string(nil), cb.strings...), mask)
	default:
		return column.NewNullBuffer(len(cb.nulls))
	}
}

// take removes and returns the first n rows from cb, shifting the remainder
// to the front.
func (cb *columnBuilder) take(n int) *columnBuilder {
	head := &columnBuilder{typ: cb.typ}

	switch cb.typ {
	case format.TypeInt64:
		head.ints = append(head.ints, cb.ints[:n]...)
		cb.ints = append([]int64(nil), cb.ints[n:]...)
	case format.TypeUint64:
		head.uints = append(head.uints, cb.uints[:n]...)
		cb.uints = append([]uint64(nil), cb.uints[n:]...)
	case format.TypeFloat:
		head.floats = append(head.floats, cb.floats[:n]...)
		cb.floats = append([]float64(nil), cb.floats[n:]...)
	case format.TypeString:
		head.strings = append(head.strings, cb.strings[:n]...)
		cb.strings = append([]string(nil), cb.strings[n:]...)
	}

	head.nulls = append(head.nulls, cb.nulls[:n]...)
	cb.nulls = append([]bool(nil), cb.nulls[n:]...)

	return head
}

// WriteBuffer accumulates ingested rows for one table ahead of a seal. The
// column schema grows as new columns are first seen; rows before a column's
// first appearance, or missing from a later batch, are implicitly null
// (spec.md §3, "Table").
type WriteBuffer struct {
	mu      sync.Mutex
	len     int
	columns map[string]*columnBuilder
}

// NewWriteBuffer returns an empty write buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{columns: make(map[string]*columnBuilder)}
}

// Len reports the number of not-yet-sealed rows.
func (wb *WriteBuffer) Len() int {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	return wb.len
}

// Append merges a row-batch of n rows into the buffer. batch need not
// mention every known column (missing ones are backfilled null) and may
// introduce columns never seen before (earlier rows are backfilled null).
func (wb *WriteBuffer) Append(batch map[string]column.Buffer, n int) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	for name, b := range batch {
		if b.Len() != n {
			return fmt.Errorf("%w: column %q has %d rows, batch declares %d", errs.ErrTypeMismatch, name, b.Len(), n)
		}
	}

	for name, b := range batch {
		cb, ok := wb.columns[name]
		if !ok {
			cb = newColumnBuilder(b.Type(), wb.len)
			wb.columns[name] = cb
		}
		if err := cb.appendBuffer(b); err != nil {
			return err
		}
	}

	for name, cb := range wb.columns {
		if _, present := batch[name]; !present {
			cb.growNulls(n)
		}
	}

	wb.len += n

	return nil
}

// sealable reports whether the buffer holds enough rows to cut at least one
// full-size partition.
func (wb *WriteBuffer) sealable(partitionSize int) bool {
	return wb.len >= partitionSize
}

// takeChunk removes and returns the first n rows of every column as a
// row-batch, for handoff to Seal.
func (wb *WriteBuffer) takeChunk(n int) map[string]column.Buffer {
	out := make(map[string]column.Buffer, len(wb.columns))
	for name, cb := range wb.columns {
		out[name] = cb.take(n).buffer()
	}
	wb.len -= n

	return out
}
