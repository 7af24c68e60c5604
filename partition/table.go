package partition

import (
	"sync"

	"github.com/cswinter/locustdb/column"
)

// Table is a named ordered list of sealed partition ids plus an open write
// buffer of not-yet-sealed rows (spec.md §3).
type Table struct {
	Name          string
	PartitionSize int

	mu           sync.RWMutex
	partitionIDs []uint64
	buffer       *WriteBuffer
}

// NewTable returns an empty table sealing at DefaultPartitionSize rows.
func NewTable(name string) *Table {
	return &Table{Name: name, PartitionSize: DefaultPartitionSize, buffer: NewWriteBuffer()}
}

// PartitionIDs returns the ids of every sealed partition, oldest first.
func (t *Table) PartitionIDs() []uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return append([]uint64(nil), t.partitionIDs...)
}

// BufferedRows reports how many rows are staged but not yet sealed.
func (t *Table) BufferedRows() int {
	return t.buffer.Len()
}

// Ingest merges batch (n rows) into the table's write buffer, sealing as
// many full-size partitions as the buffer now supports (spec.md §4.5: "If
// the write buffer length >= partition size, it is sealed"). nextID is
// called once per partition sealed, in order. Sealed partitions are
// returned for the caller (the storage manager) to persist.
func (t *Table) Ingest(batch map[string]column.Buffer, n int, nextID func() uint64) ([]*Partition, error) {
	if err := t.buffer.Append(batch, n); err != nil {
		return nil, err
	}

	var sealed []*Partition

	t.mu.Lock()
	defer t.mu.Unlock()

	for t.buffer.sealable(t.PartitionSize) {
		chunk := t.buffer.takeChunk(t.PartitionSize)
		id := nextID()
		p := Seal(id, chunk, t.PartitionSize)
		if p == nil {
			break
		}
		t.partitionIDs = append(t.partitionIDs, id)
		sealed = append(sealed, p)
	}

	return sealed, nil
}

// ReplacePartitions atomically swaps oldIDs for newID in the table's sealed
// partition list, preserving the position of the first oldID found and
// dropping the rest, used after compaction merges several partitions into
// one (spec.md §4.6). oldIDs not currently present are ignored.
func (t *Table) ReplacePartitions(oldIDs []uint64, newID uint64) {
	old := make(map[uint64]bool, len(oldIDs))
	for _, id := range oldIDs {
		old[id] = true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]uint64, 0, len(t.partitionIDs))
	inserted := false

	for _, id := range t.partitionIDs {
		if !old[id] {
			out = append(out, id)

			continue
		}
		if !inserted {
			out = append(out, newID)
			inserted = true
		}
	}

	if !inserted {
		out = append(out, newID)
	}

	t.partitionIDs = out
}

// RemovePartition drops id from the table's sealed partition list.
func (t *Table) RemovePartition(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.partitionIDs[:0:0]
	for _, existing := range t.partitionIDs {
		if existing != id {
			out = append(out, existing)
		}
	}
	t.partitionIDs = out
}

// Flush force-seals whatever rows remain in the write buffer, regardless of
// partition-size, for use at clean shutdown. A zero-row buffer is a no-op.
func (t *Table) Flush(nextID func() uint64) *Partition {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.buffer.Len()
	if n == 0 {
		return nil
	}

	chunk := t.buffer.takeChunk(n)
	id := nextID()
	p := Seal(id, chunk, n)
	if p != nil {
		t.partitionIDs = append(t.partitionIDs, id)
	}

	return p
}
