// Package codec implements the column encoding layer: a small closed set of
// composable CodecOps that turn an in-memory execution buffer into compact
// stored byte sections, and a single decode interpreter that reverses them.
//
// The op set and the "one interpreter, many per-variant encoders" split
// follows the teacher's encoding package (mebo's TimestampDeltaEncoder /
// NumericGorillaEncoder / NumericRawEncoder all implementing one
// encoding.ColumnarEncoder[T] interface), generalized from "timestamp vs.
// value vs. tag column, two or three fixed strategies each" to the closed,
// ordered CodecOp pipeline described in spec §4.1.
package codec

import "github.com/cswinter/locustdb/format"

// Op is one step of a column's decode pipeline, applied in order from the
// stored data sections up to the execution buffer. Pipelines are built and
// read back-to-front during decode: the interpreter walks Op list forward,
// but each Op's *effect* is "produce the next, wider representation" (i.e.
// its inverse relative to encoding).
type Op interface {
	Tag() format.CodecOpTag
}

// Add is the inverse of a constant-offset delta: decoded[i] = stored[i] + Amount.
type Add struct {
	ValType format.ValueType
	Amount  int64
}

func (Add) Tag() format.CodecOpTag { return format.OpAdd }

// Delta reconstructs values via prefix sum (first-difference) over a stream
// of deltas stored in ValType.
type Delta struct {
	ValType format.ValueType
}

func (Delta) Tag() format.CodecOpTag { return format.OpDelta }

// ToI64 widens a narrower stored integer section to 64 bits.
type ToI64 struct {
	ValType format.ValueType
}

func (ToI64) Tag() format.CodecOpTag { return format.OpToI64 }

// PushDataSection pushes data section Idx onto the interpreter's decode
// stack, making it available to a subsequent op (DictLookup's dictionary,
// Nullable's bitvec).
type PushDataSection struct {
	Idx int
}

func (PushDataSection) Tag() format.CodecOpTag { return format.OpPushDataSection }

// DictLookup decodes index codes (narrow integers already on the value
// stack) against a dictionary previously pushed with PushDataSection,
// producing a string buffer.
type DictLookup struct {
	ValType format.ValueType
}

func (DictLookup) Tag() format.CodecOpTag { return format.OpDictLookup }

// LZ4 decompresses an LZ4 block to LenDecoded bytes before the remaining ops run.
type LZ4 struct {
	ValType    format.ValueType
	LenDecoded int
}

func (LZ4) Tag() format.CodecOpTag { return format.OpLZ4 }

// Pco decompresses a numeric Pco block to LenDecoded bytes.
type Pco struct {
	ValType    format.ValueType
	LenDecoded int
	IsFP32     bool
}

func (Pco) Tag() format.CodecOpTag { return format.OpPco }

// UnpackStrings decodes a length-prefixed concatenated UTF-8 blob into strings.
type UnpackStrings struct{}

func (UnpackStrings) Tag() format.CodecOpTag { return format.OpUnpackStrings }

// UnhexpackStrings decodes a hex-packed string blob.
type UnhexpackStrings struct {
	Uppercase  bool
	TotalBytes int
}

func (UnhexpackStrings) Tag() format.CodecOpTag { return format.OpUnhexpackStrings }

// Nullable combines a preceding pushed bitvec section with the value section
// produced by the rest of the pipeline into a nullable execution buffer.
type Nullable struct{}

func (Nullable) Tag() format.CodecOpTag { return format.OpNullable }

// Range is the degenerate, data-section-free pipeline for arithmetic
// progressions and single-value columns: value(i) = Start + i*Step, for i in
// [0, Len). Step == 0 represents a single repeated value.
type Range struct {
	Start int64
	Len   int
	Step  int64
}

func (Range) Tag() format.CodecOpTag { return format.OpRange }

// Gorilla decodes a float column compressed with Facebook's Gorilla
// XOR-based scheme, an alternative to Pco for floats (spec §4.1).
type Gorilla struct {
	ValType format.ValueType
}

func (Gorilla) Tag() format.CodecOpTag { return format.OpGorilla }
