package column

import "math/bits"

// NullMask is a dense bitvec, one bit per row, set when the row's value is
// null. A nil *NullMask means "no nulls" (the common case) so non-nullable
// columns pay no memory cost.
type NullMask struct {
	words []uint64
	n     int
}

// NewNullMask allocates a mask for n rows, all non-null.
func NewNullMask(n int) *NullMask {
	return &NullMask{words: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of rows the mask covers.
func (m *NullMask) Len() int {
	if m == nil {
		return 0
	}

	return m.n
}

// IsNull reports whether row i is null. A nil receiver is never null.
func (m *NullMask) IsNull(i int) bool {
	if m == nil {
		return false
	}

	return m.words[i/64]&(uint64(1)<<(uint(i)%64)) != 0
}

// SetNull marks row i as null.
func (m *NullMask) SetNull(i int) {
	m.words[i/64] |= uint64(1) << (uint(i) % 64)
}

// Count returns the number of null rows.
func (m *NullMask) Count() int {
	if m == nil {
		return 0
	}

	total := 0
	for _, w := range m.words {
		total += bits.OnesCount64(w)
	}

	return total
}

// AllNull reports whether every row in the mask is null.
func (m *NullMask) AllNull() bool {
	return m.Count() == m.Len()
}

// Words exposes the underlying bitvec for serialization by the codec package.
func (m *NullMask) Words() []uint64 {
	if m == nil {
		return nil
	}

	return m.words
}

// NullMaskFromWords reconstructs a mask from a decoded bitvec data section.
func NullMaskFromWords(words []uint64, n int) *NullMask {
	return &NullMask{words: words, n: n}
}
