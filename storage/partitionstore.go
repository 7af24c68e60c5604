package storage

import (
	"sort"
	"sync"

	"github.com/cswinter/locustdb/errs"
)

// PartitionStore is the byte-range blob boundary sealed partitions are
// written through, the storage-layer analogue of wal.SegmentStore
// (object-store backends are out of scope per spec.md §1 and are expected
// to satisfy this interface).
type PartitionStore interface {
	Put(id uint64, data []byte) error
	Get(id uint64) ([]byte, error)
	List() ([]uint64, error)
	Delete(id uint64) error
}

// MemPartitionStore is the default in-memory PartitionStore, sufficient for
// tests and an all-in-memory deployment.
type MemPartitionStore struct {
	mu    sync.Mutex
	blobs map[uint64][]byte
}

func NewMemPartitionStore() *MemPartitionStore {
	return &MemPartitionStore{blobs: make(map[uint64][]byte)}
}

func (m *MemPartitionStore) Put(id uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := append([]byte(nil), data...)
	m.blobs[id] = cp

	return nil
}

func (m *MemPartitionStore) Get(id uint64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[id]
	if !ok {
		return nil, errs.ErrPartitionNotFound
	}

	return data, nil
}

func (m *MemPartitionStore) List() ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint64, 0, len(m.blobs))
	for id := range m.blobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (m *MemPartitionStore) Delete(id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, id)

	return nil
}
