package compress

// ZstdCompressor implements format.CompressionZstd: the terminal compressor
// for the MetaV2 column-name dictionary and the stand-in for the Pco codec
// op (no Pco/quantile-compression library exists in the dependency pack, see
// DESIGN.md), trading compression speed for the best ratio of the four
// built-in codecs. Compress/Decompress live in zstd_cgo.go (cgo build, the
// valyala/gozstd binding) and zstd_pure.go (!cgo build, the pure-Go
// klauspost/compress/zstd decoder) so a CGO_ENABLED=0 build still gets a
// working, if somewhat slower, Zstd codec.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
