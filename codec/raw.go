package codec

import (
	"math"

	"github.com/cswinter/locustdb/endian"
	"github.com/cswinter/locustdb/format"
)

var le = endian.GetLittleEndianEngine()

// widenInts decodes a raw byte section of the given tag into a []int64,
// widening narrower stored widths to 64 bits (the ToI64 op, and the implicit
// widening every integer section undergoes on its way into the execution
// buffer per spec §3: "stored as 64-bit semantically; narrower encodings
// internal").
func widenInts(tag format.DataSectionTag, raw []byte) []int64 {
	switch tag {
	case format.SectionU8:
		out := make([]int64, len(raw))
		for i, b := range raw {
			out[i] = int64(b)
		}

		return out
	case format.SectionU16:
		n := len(raw) / 2
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			out[i] = int64(le.Uint16(raw[i*2:]))
		}

		return out
	case format.SectionU32:
		n := len(raw) / 4
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			out[i] = int64(le.Uint32(raw[i*4:]))
		}

		return out
	case format.SectionU64:
		n := len(raw) / 8
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			out[i] = int64(le.Uint64(raw[i*8:]))
		}

		return out
	case format.SectionI64:
		n := len(raw) / 8
		out := make([]int64, n)
		for i := 0; i < n; i++ {
			out[i] = int64(le.Uint64(raw[i*8:]))
		}

		return out
	default:
		return nil
	}
}

// narrowInts picks the smallest of u8/u16/u32/u64/i64 that can hold every
// value in vs and returns the section tag plus the encoded bytes. allowSigned
// controls whether negative values are acceptable (true for TypeInt64
// columns, false for TypeUint64/dictionary-code columns which are never
// negative by construction).
func narrowInts(vs []int64, allowSigned bool) (format.DataSectionTag, []byte) {
	var min, max int64
	if len(vs) > 0 {
		min, max = vs[0], vs[0]
		for _, v := range vs[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	if allowSigned && (min < 0 || max > 1<<32-1) {
		buf := make([]byte, len(vs)*8)
		for i, v := range vs {
			le.PutUint64(buf[i*8:], uint64(v))
		}

		return format.SectionI64, buf
	}

	switch {
	case max < 1<<8:
		buf := make([]byte, len(vs))
		for i, v := range vs {
			buf[i] = byte(v)
		}

		return format.SectionU8, buf
	case max < 1<<16:
		buf := make([]byte, len(vs)*2)
		for i, v := range vs {
			le.PutUint16(buf[i*2:], uint16(v))
		}

		return format.SectionU16, buf
	case max < 1<<32:
		buf := make([]byte, len(vs)*4)
		for i, v := range vs {
			le.PutUint32(buf[i*4:], uint32(v))
		}

		return format.SectionU32, buf
	default:
		buf := make([]byte, len(vs)*8)
		for i, v := range vs {
			le.PutUint64(buf[i*8:], uint64(v))
		}

		return format.SectionU64, buf
	}
}

func decodeFloats(raw []byte) []float64 {
	n := len(raw) / 8
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float64frombits(le.Uint64(raw[i*8:]))
	}

	return out
}

func encodeFloats(vs []float64) []byte {
	buf := make([]byte, len(vs)*8)
	for i, v := range vs {
		le.PutUint64(buf[i*8:], math.Float64bits(v))
	}

	return buf
}
