package compress

// NoOpCompressor implements format.CompressionNone: a section whose encoding
// already made it small, or whose bytes are incompressible, skips the
// compression stage entirely rather than pay framing overhead for nothing.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged; the caller owns the slice, same as every
// other Compressor, so no copy is needed since nothing was allocated.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
