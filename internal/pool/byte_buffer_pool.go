// Package pool provides pooled byte and slice buffers shared by the codec
// pipeline, the WAL writer, and the vectorized executor's scratch-buffer
// pool, so that per-batch and per-section allocation stays off the hot path.
package pool

import (
	"io"
	"sync"
)

// Default and threshold sizes for the two buffer classes the core allocates:
// codec sections (small, one per column per partition) and executor scratch
// batches (one per operator per batch, reused heavily within a query).
const (
	SectionBufferDefaultSize  = 1024 * 16       // 16KiB
	SectionBufferMaxThreshold = 1024 * 128      // 128KiB
	BatchBufferDefaultSize    = 1024 * 1024     // 1MiB
	BatchBufferMaxThreshold   = 1024 * 1024 * 8 // 8MiB
)

type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes() returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite writes data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Slice returns a slice of the buffer from start to end.
// Panics if the indices are out of bounds.
func (bb *ByteBuffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(bb.B) {
		panic("Slice: invalid indices")
	}

	return bb.B[start:end]
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// Extend extends the buffer by n bytes if there is sufficient capacity.
func (bb *ByteBuffer) Extend(n int) bool {
	curLen := len(bb.B)
	if cap(bb.B)-curLen < n {
		return false
	}

	bb.B = bb.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the buffer by n bytes, growing it if necessary.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}

	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
// If the buffer has sufficient capacity, Grow does nothing.
//
// The growth strategy is as follows:
//   - For small buffers (capacity up to 4*SectionBufferDefaultSize, 64KiB), grow by SectionBufferDefaultSize to minimize reallocations.
//   - For larger buffers, grow by 25% of current capacity to balance memory usage and reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return // Sufficient capacity
	}

	growBy := SectionBufferDefaultSize
	if cap(bb.B) > 4*SectionBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int // Optional maximum size threshold for buffers
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	sectionDefaultPool = NewByteBufferPool(SectionBufferDefaultSize, SectionBufferMaxThreshold)
	batchDefaultPool   = NewByteBufferPool(BatchBufferDefaultSize, BatchBufferMaxThreshold)
)

// GetSectionBuffer retrieves a ByteBuffer from the default codec-section pool.
func GetSectionBuffer() *ByteBuffer {
	return sectionDefaultPool.Get()
}

// PutSectionBuffer returns a ByteBuffer to the default codec-section pool.
func PutSectionBuffer(bb *ByteBuffer) {
	sectionDefaultPool.Put(bb)
}

// GetBatchBuffer retrieves a ByteBuffer from the default executor-batch pool.
func GetBatchBuffer() *ByteBuffer {
	return batchDefaultPool.Get()
}

// PutBatchBuffer returns a ByteBuffer to the default executor-batch pool.
func PutBatchBuffer(bb *ByteBuffer) {
	batchDefaultPool.Put(bb)
}

// BoundedByteBufferPool wraps a ByteBufferPool with an admission counter so a
// caller (the executor's scratch pool, per spec §4.4's back-pressure rule)
// can block new allocations once a byte budget is exhausted, instead of
// letting parallel large queries run the process out of memory.
type BoundedByteBufferPool struct {
	inner *ByteBufferPool
	sem   chan struct{} // one slot per SectionBufferDefaultSize-ish chunk of budget
}

// NewBoundedByteBufferPool creates a pool that admits at most budgetBytes
// worth of concurrently-outstanding buffers (rounded up to chunkSize slots).
func NewBoundedByteBufferPool(inner *ByteBufferPool, budgetBytes, chunkSize int) *BoundedByteBufferPool {
	if chunkSize <= 0 {
		chunkSize = SectionBufferDefaultSize
	}
	slots := budgetBytes / chunkSize
	if slots < 1 {
		slots = 1
	}

	return &BoundedByteBufferPool{
		inner: inner,
		sem:   make(chan struct{}, slots),
	}
}

// Acquire blocks until a slot is available, then returns a buffer. The
// caller must call Release exactly once per successful Acquire.
func (p *BoundedByteBufferPool) Acquire() *ByteBuffer {
	p.sem <- struct{}{}
	return p.inner.Get()
}

// TryAcquire is the non-blocking variant used by workers that would rather
// park on a select than block outright; ok is false if the pool is at budget.
func (p *BoundedByteBufferPool) TryAcquire() (*ByteBuffer, bool) {
	select {
	case p.sem <- struct{}{}:
		return p.inner.Get(), true
	default:
		return nil, false
	}
}

// Release returns bb to the pool and frees its admission slot.
func (p *BoundedByteBufferPool) Release(bb *ByteBuffer) {
	p.inner.Put(bb)
	<-p.sem
}
