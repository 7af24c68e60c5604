//go:build cgo

package compress

import (
	"github.com/valyala/gozstd"

	"github.com/cswinter/locustdb/errs"
)

// Compress uses gozstd's cgo binding at level 3, the default trade-off
// between ratio and speed for a dictionary blob or encoded section.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.CompressLevel(nil, data, 3), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, errs.Classify(errs.KindCorruptData, err)
	}

	return out, nil
}
