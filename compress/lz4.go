package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/cswinter/locustdb/errs"
)

// lz4CompressorPool reuses lz4.Compressor instances across sections: the
// LZ4 codec op runs once per qualifying section during compaction, and the
// compressor's internal hash table is worth keeping warm rather than
// reallocating per call.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor implements format.CompressionLZ4, the terminal compressor
// codec/encode.go's compressIfWorthwhile reaches for: fast decompression at
// query time, at the cost of a lower ratio than Zstd.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dstSize := lz4.CompressBlockBound(len(data))
	dst := make([]byte, dstSize)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress reverses Compress. The section's own LZ4 op records the decoded
// length (codec.LZ4.LenDecoded), so the decode path validates against that
// directly rather than trusting this method's output size; here we only need
// a buffer large enough to hold the block, grown adaptively since the
// compressed bytes alone don't say how large that is.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, errs.Classify(errs.KindCorruptData, err)
		}

		return buf[:n], nil
	}

	return nil, errs.Classify(errs.KindCorruptData, errs.ErrTruncatedSection)
}
