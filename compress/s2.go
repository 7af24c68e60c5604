package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/cswinter/locustdb/errs"
)

// S2Compressor implements format.CompressionS2, a middle ground between
// format.CompressionLZ4's decompression speed and format.CompressionZstd's
// ratio; package klauspost/compress/s2 does its own buffer management so
// there's no pool to maintain here.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, errs.Classify(errs.KindCorruptData, err)
	}

	return out, nil
}
