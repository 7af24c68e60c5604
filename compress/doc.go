// Package compress implements the terminal compressors the codec package's
// LZ4 and Pco ops wrap around an already-encoded data section (codec.Section,
// which keeps the tag of the width it encodes, e.g. SectionU8) and that storage/meta.go
// applies to the interned column-name dictionary in MetaV2. Encoding (delta,
// dictionary, Gorilla) exploits structure in the column's values first; these
// codecs are the general-purpose pass applied on top of an encoded section's
// raw bytes, chosen per format.CompressionType:
//
//   - CompressionNone: passthrough, for sections encoding already made small
//     or incompressible (e.g. a Gorilla-compressed float section).
//   - CompressionZstd: best ratio, used for the column-name dictionary and as
//     the Pco op's stand-in terminal compressor (see DESIGN.md).
//   - CompressionS2: fast, low-memory alternative to Zstd.
//   - CompressionLZ4: the LZ4 op's terminal compressor — fast decompression,
//     chosen by encode.go's compressIfWorthwhile whenever a section is large
//     enough to be worth the framing overhead.
//
// GetCodec(format.CompressionType) returns the built-in Codec for a
// compression type recorded in a column's codec pipeline; CreateCodec builds
// one directly without the registry lookup, for callers (tests, benchmarks)
// that want to name the failing compression type in an error.
package compress
