package codec

import (
	"math"
	"math/bits"

	"github.com/cswinter/locustdb/internal/pool"
)

// gorillaEncoder implements Facebook's Gorilla XOR-based float64 compression:
// the first value is stored raw (64 bits); each subsequent value is XORed
// against the previous one, and the meaningful (non-zero) bit range of the
// XOR is stored using a leading-zero-count/block-length header, reusing the
// previous block's header when it still covers the new XOR's meaningful
// bits. See https://www.vldb.org/pvldb/vol8/p1816-teller.pdf.
//
// Adapted from the teacher's NumericGorillaEncoder: same bit-packing scheme,
// condensed to the single value-at-a-time path since the codec pipeline
// always encodes one column's full buffer in one call.
type gorillaEncoder struct {
	buf           *pool.ByteBuffer
	bitBuf        uint64
	bitCount      int
	prevValue     uint64
	prevLeading   int
	prevTrailing  int
	prevBlockSize int
	count         int
	first         bool
}

func newGorillaEncoder() *gorillaEncoder {
	return &gorillaEncoder{buf: pool.GetSectionBuffer(), first: true}
}

func (e *gorillaEncoder) writeBits(value uint64, numBits int) {
	if numBits == 0 {
		return
	}

	if numBits < 64 {
		value &= (1 << uint(numBits)) - 1
	}

	available := 64 - e.bitCount
	if numBits <= available {
		e.bitBuf = (e.bitBuf << uint(numBits)) | value
		e.bitCount += numBits

		if e.bitCount == 64 {
			e.flush()
		}

		return
	}

	highBits := numBits - available
	e.bitBuf = (e.bitBuf << uint(available)) | (value >> uint(highBits))
	e.bitCount = 64
	e.flush()

	e.bitBuf = value & ((1 << uint(highBits)) - 1)
	e.bitCount = highBits
}

func (e *gorillaEncoder) flush() {
	if e.bitCount == 0 {
		return
	}

	numBytes := (e.bitCount + 7) / 8
	e.buf.Grow(numBytes)
	aligned := e.bitBuf << uint(64-e.bitCount)

	start := e.buf.Len()
	e.buf.ExtendOrGrow(numBytes)
	dst := e.buf.Slice(start, start+numBytes)
	for i := 0; i < numBytes; i++ {
		dst[i] = byte(aligned >> uint(56-i*8))
	}

	e.bitBuf, e.bitCount = 0, 0
}

func (e *gorillaEncoder) write(val float64) {
	e.count++
	bits64 := math.Float64bits(val)

	if e.first {
		e.first = false
		e.prevValue = bits64
		e.writeBits(bits64, 64)

		return
	}

	xor := bits64 ^ e.prevValue
	e.prevValue = bits64

	if xor == 0 {
		e.writeBits(0, 1)
		return
	}

	e.writeBits(1, 1)

	leading := bits.LeadingZeros64(xor)
	trailing := bits.TrailingZeros64(xor)
	if leading > 31 {
		leading = 31
	}
	blockSize := 64 - leading - trailing

	if e.prevBlockSize > 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		reuseBlock := 64 - e.prevLeading - e.prevTrailing
		e.writeBits(0, 1)
		e.writeBits(xor>>uint(e.prevTrailing), reuseBlock)
	} else {
		e.writeBits(1, 1)
		e.writeBits(uint64(leading), 5)
		e.writeBits(uint64(blockSize), 6)
		e.writeBits(xor>>uint(trailing), blockSize)
		e.prevLeading, e.prevTrailing, e.prevBlockSize = leading, trailing, blockSize
	}
}

func (e *gorillaEncoder) bytes() []byte {
	if e.bitCount > 0 {
		e.flush()
	}

	return e.buf.Bytes()
}

func (e *gorillaEncoder) release() {
	pool.PutSectionBuffer(e.buf)
}

// gorillaBitReader reads back the bit-packed stream written by gorillaEncoder.
type gorillaBitReader struct {
	data     []byte
	bytePos  int
	bitBuf   uint64
	bitCount int
}

func newGorillaBitReader(data []byte) *gorillaBitReader {
	return &gorillaBitReader{data: data}
}

func (r *gorillaBitReader) readBit() uint64 {
	return r.readBits(1)
}

func (r *gorillaBitReader) readBits(n int) uint64 {
	if n > 32 {
		hi := r.readBits(n - 32)
		return hi<<32 | r.readBits(32)
	}

	for r.bitCount < n {
		var b byte
		if r.bytePos < len(r.data) {
			b = r.data[r.bytePos]
		}
		r.bytePos++
		r.bitBuf = (r.bitBuf << 8) | uint64(b)
		r.bitCount += 8
	}

	shift := uint(r.bitCount - n)
	val := (r.bitBuf >> shift) & ((1 << uint(n)) - 1)
	r.bitCount -= n

	return val
}

// decodeGorilla decodes count float64 values from a Gorilla-compressed blob.
func decodeGorilla(data []byte, count int) []float64 {
	out := make([]float64, count)
	if count == 0 {
		return out
	}

	r := newGorillaBitReader(data)
	prev := r.readBits(64)
	out[0] = math.Float64frombits(prev)

	leading, trailing, blockSize := 0, 0, 0
	for i := 1; i < count; i++ {
		if r.readBit() == 0 {
			out[i] = out[i-1]
			continue
		}

		var xor uint64
		if r.readBit() == 0 {
			// reuse previous block
			xor = r.readBits(blockSize) << uint(trailing)
		} else {
			leading = int(r.readBits(5))
			blockSize = int(r.readBits(6))
			if blockSize == 0 {
				blockSize = 64 // a full 64-bit block wraps to 0 in the 6-bit field
			}
			trailing = 64 - leading - blockSize
			xor = r.readBits(blockSize) << uint(trailing)
		}

		prev ^= xor
		out[i] = math.Float64frombits(prev)
	}

	return out
}
