package codec

import (
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/compress"
	"github.com/cswinter/locustdb/format"
)

// lz4Threshold is the smallest section size worth spending an LZ4
// compress/decompress round trip on; below it the framing overhead usually
// outweighs the saving.
const lz4Threshold = 512

// Encode picks a codec pipeline for buf and returns the StoredColumn ready to
// be written into a subpartition, per the per-variant encoder design of
// spec §4.1 ("a single decode interpreter ... encoders are per-variant,
// chosen per column based on simple statistics").
func Encode(name string, buf column.Buffer) StoredColumn {
	switch b := buf.(type) {
	case *column.NullBuffer:
		return StoredColumn{Name: name, Len: b.Len(), Range: column.EmptyRange()}
	case *column.Int64Buffer:
		return encodeIntColumn(name, b.Values, b.Nulls(), format.TypeInt64, true)
	case *column.Uint64Buffer:
		vals := make([]int64, len(b.Values))
		for i, v := range b.Values {
			vals[i] = int64(v)
		}

		return encodeIntColumn(name, vals, b.Nulls(), format.TypeUint64, false)
	case *column.FloatBuffer:
		return encodeFloatColumn(name, b.Values, b.Nulls())
	case *column.StringBuffer:
		return encodeStringColumn(name, b.Values, b.Nulls())
	case *column.MixedBuffer:
		panic("codec: Mixed columns are produced by the executor, never stored")
	default:
		panic("codec: unknown buffer type")
	}
}

func encodeIntColumn(name string, vals []int64, nulls *column.NullMask, valType format.ValueType, allowRange bool) StoredColumn {
	n := len(vals)
	rng := computeIntRange(vals, nulls)

	if n == 0 {
		return StoredColumn{Name: name, Len: 0, Range: rng}
	}

	work := vals
	if nulls != nil {
		work = make([]int64, n)
		copy(work, vals)
		for i := range work {
			if nulls.IsNull(i) {
				work[i] = 0
			}
		}
	}

	ops, data := encodeInts(work, valType, allowRange && nulls == nil)
	ops, data = attachNullable(ops, data, nulls, n)

	return StoredColumn{Name: name, Len: n, Range: rng, Codec: ops, Data: data}
}

// encodeInts chooses between the degenerate Range pipeline (arithmetic
// progressions, including constant columns), a Delta pipeline, and an
// Add-from-minimum pipeline, picking whichever yields the smaller stored
// section when more than one applies.
func encodeInts(vals []int64, valType format.ValueType, allowRange bool) ([]Op, []Section) {
	n := len(vals)

	if allowRange {
		if step, ok := detectArithmeticProgression(vals); ok {
			return []Op{Range{Start: vals[0], Len: n, Step: step}}, nil
		}
	}

	diffs := make([]int64, n)
	diffs[0] = vals[0]
	for i := 1; i < n; i++ {
		diffs[i] = vals[i] - vals[i-1]
	}
	deltaTag, deltaBytes := narrowInts(diffs, true)

	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	shifted := make([]int64, n)
	for i, v := range vals {
		shifted[i] = v - min
	}
	addTag, addBytes := narrowInts(shifted, false)

	var ops []Op
	var sec Section
	if len(deltaBytes) <= len(addBytes) {
		ops, sec = []Op{Delta{ValType: valType}}, Section{Tag: deltaTag, Bytes: deltaBytes}
	} else {
		ops, sec = []Op{Add{ValType: valType, Amount: min}}, Section{Tag: addTag, Bytes: addBytes}
	}

	if compressed, lenDecoded, ok := compressIfWorthwhile(sec.Bytes); ok {
		sec.Bytes = compressed
		ops = append([]Op{LZ4{ValType: valType, LenDecoded: lenDecoded}}, ops...)
	}

	return ops, []Section{sec}
}

func detectArithmeticProgression(vals []int64) (int64, bool) {
	if len(vals) <= 1 {
		return 0, true
	}

	step := vals[1] - vals[0]
	for i := 2; i < len(vals); i++ {
		if vals[i]-vals[i-1] != step {
			return 0, false
		}
	}

	return step, true
}

func computeIntRange(vals []int64, nulls *column.NullMask) column.Range {
	first := true
	var min, max int64
	for i, v := range vals {
		if nulls.IsNull(i) {
			continue
		}
		if first {
			min, max = v, v
			first = false

			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if first {
		return column.EmptyRange()
	}

	return column.NewRange(min, max)
}

func encodeFloatColumn(name string, vals []float64, nulls *column.NullMask) StoredColumn {
	n := len(vals)
	if n == 0 {
		return StoredColumn{Name: name, Len: 0, Range: column.EmptyRange()}
	}

	enc := newGorillaEncoder()
	for _, v := range vals {
		enc.write(v)
	}
	payload := enc.bytes()
	enc.release()

	ops := []Op{Gorilla{ValType: format.TypeFloat}}
	sec := Section{Tag: format.SectionF64, Bytes: payload}

	if compressed, lenDecoded, ok := compressIfWorthwhile(sec.Bytes); ok {
		sec.Bytes = compressed
		ops = append([]Op{LZ4{ValType: format.TypeFloat, LenDecoded: lenDecoded}}, ops...)
	}

	ops, data := attachNullable(ops, []Section{sec}, nulls, n)

	// A float column has no meaningful narrow integer range; callers that
	// want predicate pushdown over floats compare against min/max kept out
	// of band by the planner, not via column.Range (spec §4.2 reserves
	// Range pushdown for integer-typed columns).
	return StoredColumn{Name: name, Len: n, Range: column.EmptyRange(), Codec: ops, Data: data}
}

func encodeStringColumn(name string, vals []string, nulls *column.NullMask) StoredColumn {
	n := len(vals)
	if n == 0 {
		return StoredColumn{Name: name, Len: 0, Range: column.EmptyRange()}
	}

	distinct := make(map[string]struct{}, n)
	for _, s := range vals {
		distinct[s] = struct{}{}
	}

	var ops []Op
	var data []Section

	if len(distinct) <= n/2 {
		codes, dict := buildDictionary(vals)
		codesI64 := make([]int64, len(codes))
		for i, c := range codes {
			codesI64[i] = int64(c)
		}
		tag, bytes := narrowInts(codesI64, false)
		valueSec := Section{Tag: tag, Bytes: bytes}
		dictSec := Section{Tag: format.SectionStrBlob, Bytes: packStrings(dict)}

		if compressed, lenDecoded, ok := compressIfWorthwhile(valueSec.Bytes); ok {
			valueSec.Bytes = compressed
			ops = append(ops, LZ4{ValType: format.TypeString, LenDecoded: lenDecoded})
		}

		ops = append(ops, PushDataSection{Idx: 1}, DictLookup{ValType: format.TypeString})
		data = []Section{valueSec, dictSec}
	} else {
		packed := packStrings(vals)
		sec := Section{Tag: format.SectionStrBlob, Bytes: packed}

		if compressed, lenDecoded, ok := compressIfWorthwhile(sec.Bytes); ok {
			sec.Bytes = compressed
			ops = append(ops, LZ4{ValType: format.TypeString, LenDecoded: lenDecoded})
		}

		ops = append(ops, UnpackStrings{})
		data = []Section{sec}
	}

	ops, data = attachNullable(ops, data, nulls, n)

	return StoredColumn{Name: name, Len: n, Range: column.EmptyRange(), Codec: ops, Data: data}
}

// attachNullable appends a bitvec data section and the PushDataSection/
// Nullable op pair when nulls is non-nil, leaving ops/data untouched
// otherwise.
func attachNullable(ops []Op, data []Section, nulls *column.NullMask, n int) ([]Op, []Section) {
	if nulls == nil {
		return ops, data
	}

	data = append(data, Section{Tag: format.SectionBitvec, Bytes: wordsToBytes(nulls.Words(), n)})
	ops = append(ops, PushDataSection{Idx: len(data) - 1}, Nullable{})

	return ops, data
}

// compressIfWorthwhile LZ4-compresses payload when it is large enough that
// compression is likely to pay for its own framing and the result is
// actually smaller; it reports ok=false (and an unchanged payload) otherwise,
// so callers never wrap a section that wouldn't shrink.
func compressIfWorthwhile(payload []byte) (compressed []byte, lenDecoded int, ok bool) {
	if len(payload) < lz4Threshold {
		return nil, 0, false
	}

	codec, err := compress.GetCodec(format.CompressionLZ4)
	if err != nil {
		return nil, 0, false
	}

	out, err := codec.Compress(payload)
	if err != nil || len(out) >= len(payload) {
		return nil, 0, false
	}

	return out, len(payload), true
}
