package compress

import (
	"fmt"

	"github.com/cswinter/locustdb/format"
)

// Compressor is the terminal compression stage the codec package's LZ4 and
// Pco ops apply to an already-encoded data section (codec.Section), and that
// storage/meta.go applies to the MetaV2 column-name dictionary. Encoding
// exploits structure in a column's values (delta, dictionary, Gorilla);
// Compressor runs general-purpose compression over the resulting bytes.
type Compressor interface {
	// Compress compresses data, which is the raw bytes of one encoded data
	// section or dictionary blob. The returned slice is newly allocated and
	// owned by the caller; data is left unmodified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor. Implementations validate that data was
// produced by the matching algorithm and return errs.ErrChecksumMismatch (via
// the caller's classification, see codec/decode.go) rather than panicking on
// malformed input — a corrupt section must quarantine its partition, not
// crash the process.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec is a compressor paired with its own decompressor, keyed by
// format.CompressionType in a column's codec pipeline.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats summarizes one Compress/Decompress round for a data
// section, for callers instrumenting storage footprint per format.CompressionType.
type CompressionStats struct {
	Algorithm           format.CompressionType
	OriginalSize        int64
	CompressedSize      int64
	Ratio               float64
	CompressionTimeNs   int64
	DecompressionTimeNs int64
}

// CompressionRatio returns CompressedSize/OriginalSize; values below 1.0
// indicate the section shrank.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the reduction in section size as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec builds a fresh Codec for compressionType. target names the
// column or metadata field being compressed, surfaced in the error if
// compressionType is not one of format's four defined values.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

// builtinCodecs backs GetCodec: one shared Codec instance per
// format.CompressionType, since none of the four implementations carry
// per-call state (LZ4 and Zstd pool their scratch buffers internally).
var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for compressionType, the lookup
// codec/encode.go and codec/decode.go use for the LZ4 and Pco ops and
// storage/meta.go uses for the MetaV2 dictionary.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
