// Package column holds the concrete, typed execution buffers the query
// executor operates on, plus the polymorphic Buffer handle the planner and
// codec decoder pass around without knowing the concrete type ahead of time.
//
// These are the "execution-friendly form" the codec pipeline decodes into —
// distinct from the compact, codec-encoded representation held on disk
// (see package codec), the same way mebo's blob package keeps a decoded
// NumericBlob distinct from the raw payload bytes it was parsed from.
package column

import "github.com/cswinter/locustdb/format"

// Buffer is the polymorphic handle every executor operator and planner
// primitive receives. Callers recover the concrete type (*Int64Buffer,
// *FloatBuffer, ...) with a type assertion or a type switch.
type Buffer interface {
	// Type returns the buffer's logical value type.
	Type() format.ValueType
	// Len returns the number of rows.
	Len() int
	// Nulls returns the null bitmask, or nil if the buffer has no nulls.
	Nulls() *NullMask
	// IsNull reports whether row i is null.
	IsNull(i int) bool
}

// Int64Buffer holds a dense []int64 execution buffer (signed integer columns,
// and narrower stored integer widths widened to int64 per spec §3).
type Int64Buffer struct {
	Values []int64
	nulls  *NullMask
}

func NewInt64Buffer(values []int64, nulls *NullMask) *Int64Buffer {
	return &Int64Buffer{Values: values, nulls: nulls}
}

func (b *Int64Buffer) Type() format.ValueType { return format.TypeInt64 }
func (b *Int64Buffer) Len() int               { return len(b.Values) }
func (b *Int64Buffer) Nulls() *NullMask       { return b.nulls }
func (b *Int64Buffer) IsNull(i int) bool      { return b.nulls.IsNull(i) }

// Uint64Buffer holds a dense []uint64 execution buffer.
type Uint64Buffer struct {
	Values []uint64
	nulls  *NullMask
}

func NewUint64Buffer(values []uint64, nulls *NullMask) *Uint64Buffer {
	return &Uint64Buffer{Values: values, nulls: nulls}
}

func (b *Uint64Buffer) Type() format.ValueType { return format.TypeUint64 }
func (b *Uint64Buffer) Len() int               { return len(b.Values) }
func (b *Uint64Buffer) Nulls() *NullMask       { return b.nulls }
func (b *Uint64Buffer) IsNull(i int) bool      { return b.nulls.IsNull(i) }

// FloatBuffer holds a dense []float64 execution buffer.
type FloatBuffer struct {
	Values []float64
	nulls  *NullMask
}

func NewFloatBuffer(values []float64, nulls *NullMask) *FloatBuffer {
	return &FloatBuffer{Values: values, nulls: nulls}
}

func (b *FloatBuffer) Type() format.ValueType { return format.TypeFloat }
func (b *FloatBuffer) Len() int               { return len(b.Values) }
func (b *FloatBuffer) Nulls() *NullMask       { return b.nulls }
func (b *FloatBuffer) IsNull(i int) bool      { return b.nulls.IsNull(i) }

// StringBuffer holds a dense []string execution buffer. Strings materialized
// from a dictionary-encoded column are copied out of the dictionary once,
// here, so downstream operators never need to know the column was encoded.
type StringBuffer struct {
	Values []string
	nulls  *NullMask
}

func NewStringBuffer(values []string, nulls *NullMask) *StringBuffer {
	return &StringBuffer{Values: values, nulls: nulls}
}

func (b *StringBuffer) Type() format.ValueType { return format.TypeString }
func (b *StringBuffer) Len() int               { return len(b.Values) }
func (b *StringBuffer) Nulls() *NullMask       { return b.nulls }
func (b *StringBuffer) IsNull(i int) bool      { return b.nulls.IsNull(i) }

// NullBuffer represents an all-null column: no data sections at all, just a
// row count (spec §4.1, §8 boundary case).
type NullBuffer struct {
	N int
}

func NewNullBuffer(n int) *NullBuffer { return &NullBuffer{N: n} }

func (b *NullBuffer) Type() format.ValueType { return format.TypeNull }
func (b *NullBuffer) Len() int               { return b.N }
func (b *NullBuffer) Nulls() *NullMask       { return nil }
func (b *NullBuffer) IsNull(int) bool        { return true }

// AnyVal is a single value from a Mixed column: a per-row tagged union of
// int64, float64, string, or null, mirroring the wire AnyVal in spec §6.
type AnyVal struct {
	Type format.ValueType
	I    int64
	F    float64
	S    string
}

// MixedBuffer holds a per-row tagged union execution buffer.
type MixedBuffer struct {
	Values []AnyVal
}

func NewMixedBuffer(values []AnyVal) *MixedBuffer { return &MixedBuffer{Values: values} }

func (b *MixedBuffer) Type() format.ValueType { return format.TypeMixed }
func (b *MixedBuffer) Len() int               { return len(b.Values) }
func (b *MixedBuffer) Nulls() *NullMask       { return nil }
func (b *MixedBuffer) IsNull(i int) bool      { return b.Values[i].Type == format.TypeNull }

var (
	_ Buffer = (*Int64Buffer)(nil)
	_ Buffer = (*Uint64Buffer)(nil)
	_ Buffer = (*FloatBuffer)(nil)
	_ Buffer = (*StringBuffer)(nil)
	_ Buffer = (*NullBuffer)(nil)
	_ Buffer = (*MixedBuffer)(nil)
)
