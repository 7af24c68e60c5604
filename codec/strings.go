package codec

import (
	"encoding/hex"

	"github.com/cswinter/locustdb/errs"
)

// packStrings encodes vs as a length-prefixed concatenated UTF-8 blob: one
// varint-free uint32 length per string (little-endian, via le engine)
// followed immediately by the next string's bytes, matching the layout
// UnpackStrings expects.
func packStrings(vs []string) []byte {
	size := 0
	for _, s := range vs {
		size += 4 + len(s)
	}

	buf := make([]byte, size)
	off := 0
	for _, s := range vs {
		le.PutUint32(buf[off:], uint32(len(s)))
		off += 4
		off += copy(buf[off:], s)
	}

	return buf
}

// unpackStrings is the inverse of packStrings (the UnpackStrings op).
func unpackStrings(raw []byte, count int) ([]string, error) {
	out := make([]string, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+4 > len(raw) {
			return nil, errs.ErrTruncatedSection
		}

		n := int(le.Uint32(raw[off:]))
		off += 4

		if off+n > len(raw) {
			return nil, errs.ErrTruncatedSection
		}

		out = append(out, string(raw[off:off+n]))
		off += n
	}

	return out, nil
}

// hexpackStrings hex-encodes the concatenation of vs into one contiguous
// blob; each string's decoded length is derived from the shared per-row
// byte-length recorded by the caller (UnhexpackStrings{TotalBytes}), since
// hex strings in this domain (ids, hashes, fingerprints) are fixed-width.
func hexpackStrings(vs []string, uppercase bool) []byte {
	joined := make([]byte, 0, len(vs)*16)
	for _, s := range vs {
		joined = append(joined, s...)
	}

	encoded := hex.EncodeToString(joined)
	if uppercase {
		return []byte(toUpperASCII(encoded))
	}

	return []byte(encoded)
}

func unhexpackStrings(raw []byte, rowWidthBytes, count int) ([]string, error) {
	decoded := make([]byte, len(raw)/2)
	if _, err := hex.Decode(decoded, normalizeHexCase(raw)); err != nil {
		return nil, errs.Classify(errs.KindCorruptData, err)
	}

	if rowWidthBytes == 0 {
		if count == 0 {
			return nil, nil
		}

		rowWidthBytes = len(decoded) / count
	}

	out := make([]string, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		if off+rowWidthBytes > len(decoded) {
			return nil, errs.ErrTruncatedSection
		}

		out = append(out, hex.EncodeToString(decoded[off:off+rowWidthBytes]))
		off += rowWidthBytes
	}

	return out, nil
}

func toUpperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}

	return string(b)
}

func normalizeHexCase(raw []byte) []byte {
	b := make([]byte, len(raw))
	for i, c := range raw {
		if c >= 'A' && c <= 'F' {
			b[i] = c + ('a' - 'A')
		} else {
			b[i] = c
		}
	}

	return b
}
