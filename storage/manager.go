package storage

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/internal/hash"
	"github.com/cswinter/locustdb/internal/options"
	"github.com/cswinter/locustdb/partition"
	"github.com/cswinter/locustdb/wal"
)

// PartitionState tracks a partition's residency per spec.md §3's state
// machine: "Seeded -> Resident -> Decoded -> Evicted -> Decoded -> ..." with
// "Dropped" terminal.
type PartitionState int

const (
	// StateSeeded: catalog knows the partition exists (metadata loaded) but
	// its blob has not been read from the PartitionStore yet.
	StateSeeded PartitionState = iota
	// StateResident: the encoded partition is loaded into memory.
	StateResident
	// StateDecoded: at least one column has a decoded execution buffer
	// cached.
	StateDecoded
	// StateEvicted: decoded buffers were purged to honor the decoded-bytes
	// budget; the encoded partition remains Resident and can return to
	// Decoded on the next fetch.
	StateEvicted
	// StateDropped: the partition no longer exists (compacted away or
	// explicitly dropped).
	StateDropped
)

func (s PartitionState) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateResident:
		return "resident"
	case StateDecoded:
		return "decoded"
	case StateEvicted:
		return "evicted"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Config holds Manager construction parameters, configured through
// functional Options the way wal.Config is.
type Config struct {
	partitionStore PartitionStore
	wal            *wal.WAL
	decodedBudget  int64
	blobBudget     int64
	logger         zerolog.Logger
}

type Option = options.Option[*Config]

func WithPartitionStore(store PartitionStore) Option {
	return options.NoError(func(c *Config) { c.partitionStore = store })
}

func WithWAL(w *wal.WAL) Option {
	return options.NoError(func(c *Config) { c.wal = w })
}

// WithDecodedBudget bounds the total size of decoded execution buffers kept
// resident (spec.md §6: "two separate, enforced budgets — decoded table
// bytes and disk-cache bytes").
func WithDecodedBudget(bytes int64) Option {
	return options.NoError(func(c *Config) { c.decodedBudget = bytes })
}

// WithBlobCacheBudget bounds the encoded-subpartition-blob cache.
func WithBlobCacheBudget(bytes int64) Option {
	return options.NoError(func(c *Config) { c.blobBudget = bytes })
}

func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) { c.logger = logger })
}

// Manager is the resident catalog tying together the write-ahead log, the
// sealed-partition blob store, and the two memory budgets of spec.md §6.
type Manager struct {
	mu sync.RWMutex

	wal            *wal.WAL
	partitionStore PartitionStore
	logger         zerolog.Logger

	tables          map[string]*partition.Table
	resident        map[uint64]*partition.Partition
	partitionTable  map[uint64]string
	state           map[uint64]PartitionState
	nextPartitionID uint64

	decoded   *sizedLRU[column.Buffer]
	blobCache *byteCache
}

// NewManager constructs a Manager with an empty catalog. Call Recover to
// load an existing one.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := &Config{
		partitionStore: NewMemPartitionStore(),
		decodedBudget:  256 << 20,
		blobBudget:     64 << 20,
		logger:         zerolog.Nop(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	w := cfg.wal
	if w == nil {
		var err error
		w, err = wal.New(wal.WithLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
	}

	return &Manager{
		wal:             w,
		partitionStore:  cfg.partitionStore,
		logger:          cfg.logger,
		tables:          make(map[string]*partition.Table),
		resident:        make(map[uint64]*partition.Partition),
		partitionTable:  make(map[uint64]string),
		state:           make(map[uint64]PartitionState),
		nextPartitionID: 1,
		decoded:         newSizedLRU(cfg.decodedBudget, bufferBytes),
		blobCache:       newByteCache(cfg.blobBudget),
	}, nil
}

func (m *Manager) allocPartitionID() uint64 {
	id := m.nextPartitionID
	m.nextPartitionID++

	return id
}

func (m *Manager) tableFor(name string) *partition.Table {
	t, ok := m.tables[name]
	if !ok {
		t = partition.NewTable(name)
		m.tables[name] = t
	}

	return t
}

// Ingest appends batch to the WAL, then merges it into table's write
// buffer, persisting and cataloging any partitions the merge seals
// (spec.md §4.5 steps 1-2).
func (m *Manager) Ingest(table string, batch map[string]column.Buffer, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.wal.Append([]wal.TableSegment{{Table: table, Len: n, Columns: batch}}); err != nil {
		return err
	}

	t := m.tableFor(table)

	sealed, err := t.Ingest(batch, n, m.allocPartitionID)
	if err != nil {
		return err
	}

	for _, p := range sealed {
		if err := m.persistPartition(table, p); err != nil {
			return err
		}
	}

	return nil
}

// Flush force-seals a table's remaining buffered rows, used at clean
// shutdown (spec.md §8's durability boundary case).
func (m *Manager) Flush(table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[table]
	if !ok {
		return nil
	}

	p := t.Flush(m.allocPartitionID)
	if p == nil {
		return nil
	}

	return m.persistPartition(table, p)
}

func (m *Manager) persistPartition(table string, p *partition.Partition) error {
	blob := EncodePartition(p)
	if err := m.partitionStore.Put(p.ID, blob); err != nil {
		return errs.Classify(errs.KindIo, err)
	}

	m.resident[p.ID] = p
	m.partitionTable[p.ID] = table
	m.state[p.ID] = StateResident
	m.logger.Debug().Uint64("partition_id", p.ID).Str("table", table).Int("rows", p.Len).Msg("storage: sealed partition")

	return nil
}

// Recover replays the WAL into write buffers and seals whatever partitions
// that produces, per spec.md §4.5's startup recovery procedure. firstUnsealedID
// is the metadata-recorded cursor below which WAL segments are already
// durably sealed and safe to skip.
func (m *Manager) Recover(firstUnsealedID uint64) error {
	segments, err := m.wal.Replay(firstUnsealedID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, seg := range segments {
		for _, ts := range seg.Tables {
			t := m.tableFor(ts.Table)

			sealed, err := t.Ingest(ts.Columns, ts.Len, m.allocPartitionID)
			if err != nil {
				return err
			}
			for _, p := range sealed {
				if err := m.persistPartition(ts.Table, p); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (m *Manager) ensureResident(id uint64) (*partition.Partition, error) {
	if p, ok := m.resident[id]; ok {
		return p, nil
	}

	blob, err := m.partitionStore.Get(id)
	if err != nil {
		return nil, errs.Classify(errs.KindIo, err)
	}

	p, err := DecodePartition(blob)
	if err != nil {
		return nil, err
	}

	m.resident[id] = p
	m.state[id] = StateResident

	return p, nil
}

func decodedCacheKey(partitionID uint64, column string) uint64 {
	return hash.ID(fmt.Sprintf("%d/%s", partitionID, column))
}

// PartitionIDs returns the sealed partition ids belonging to a table, the
// scheduler's fan-out unit (spec.md §4.4: "one task per partition").
func (m *Manager) PartitionIDs(table string) []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok {
		return nil
	}

	return t.PartitionIDs()
}

// PartitionLen returns a partition's row count, making it resident if
// necessary.
func (m *Manager) PartitionLen(partitionID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.ensureResident(partitionID)
	if err != nil {
		return 0, err
	}

	return p.Len, nil
}

// ColumnRange returns a column's min/max statistics within a partition, the
// planner's predicate-pushdown input (spec.md §4.2). ok is false when the
// partition has no such column.
func (m *Manager) ColumnRange(partitionID uint64, column string) (rng column.Range, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.ensureResident(partitionID)
	if err != nil {
		return column.Range{}, false
	}

	sc, found := p.Column(column)
	if !found {
		return column.Range{}, false
	}

	return sc.Range, true
}

// FetchColumn returns the decoded execution buffer for a column of a
// partition, pulling it from the decoded cache, or from the resident
// partition, or from the partition store, in that order (spec.md §6:
// "Partition fetch: id -> decoded column buffers ... pulling subpartitions
// from cache/disk/object store").
func (m *Manager) FetchColumn(partitionID uint64, name string) (column.Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := decodedCacheKey(partitionID, name)
	if buf, ok := m.decoded.Get(key); ok && buf != nil {
		return buf, nil
	}

	p, err := m.ensureResident(partitionID)
	if err != nil {
		return nil, err
	}

	buf, err := p.Decode(name)
	if err != nil {
		return nil, errs.Classify(errs.KindCorruptData, err)
	}

	m.decoded.Put(key, buf)
	m.state[partitionID] = StateDecoded

	return buf, nil
}

// EvictDecoded purges every decoded buffer belonging to partitionID,
// transitioning it from Decoded back to Evicted while the encoded form
// stays Resident (spec.md §3: "Eviction unloads decoded buffers from
// memory; the canonical encoded form on disk remains authoritative").
func (m *Manager) EvictDecoded(partitionID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.resident[partitionID]
	if !ok {
		return
	}

	for _, name := range p.ColumnNames() {
		m.decoded.Remove(decodedCacheKey(partitionID, name))
	}

	if m.state[partitionID] == StateDecoded {
		m.state[partitionID] = StateEvicted
	}
}

// DropPartition removes a partition from the catalog and its backing
// stores entirely, the terminal Dropped state.
func (m *Manager) DropPartition(table string, partitionID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.resident, partitionID)
	m.state[partitionID] = StateDropped
	if t, ok := m.tables[table]; ok {
		t.RemovePartition(partitionID)
	}

	return errs.Classify(errs.KindIo, m.partitionStore.Delete(partitionID))
}

// Compact merges a table's partitions into one, re-running statistics-driven
// codec selection over the combined data (spec.md §4.6). The merged
// partition replaces its inputs in the catalog; the caller is responsible
// for ensuring ids passed in are contiguous, oldest-first, sealed
// partitions of the same table.
func (m *Manager) Compact(table string, ids []uint64) (*partition.Partition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(ids) == 0 {
		return nil, nil
	}

	batch := make(map[string]column.Buffer)
	total := 0
	names := map[string]bool{}

	for _, id := range ids {
		p, err := m.ensureResident(id)
		if err != nil {
			return nil, err
		}
		for _, name := range p.ColumnNames() {
			names[name] = true
		}
	}

	for _, id := range ids {
		p := m.resident[id]
		for name := range names {
			buf, err := p.Decode(name)
			if err != nil {
				return nil, errs.Classify(errs.KindCorruptData, err)
			}
			batch[name] = appendBuffer(batch[name], buf)
		}
		total += p.Len
	}

	merged := partition.Seal(m.allocPartitionID(), batch, total)
	if merged == nil {
		return nil, nil
	}

	if err := m.persistPartition(table, merged); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if id == merged.ID {
			continue
		}
		delete(m.resident, id)
		m.state[id] = StateDropped
		if err := m.partitionStore.Delete(id); err != nil {
			return nil, errs.Classify(errs.KindIo, err)
		}
	}

	if t, ok := m.tables[table]; ok {
		t.ReplacePartitions(ids, merged.ID)
	}

	m.logger.Debug().Str("table", table).Int("inputs", len(ids)).Uint64("merged_id", merged.ID).Msg("storage: compacted partitions")

	return merged, nil
}

// Stats reports the surface spec.md §6's stats() call needs: per-table
// partition counts plus the two memory budgets' current usage.
type Stats struct {
	Tables    map[string]int
	Decoded   CacheStats
	BlobCache CacheStats
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tables := make(map[string]int, len(m.tables))
	for name, t := range m.tables {
		tables[name] = len(t.PartitionIDs())
	}

	return Stats{
		Tables:    tables,
		Decoded:   m.decoded.Stats(),
		BlobCache: m.blobCache.Stats(),
	}
}

// StateOf reports a partition's current state-machine position.
func (m *Manager) StateOf(partitionID uint64) PartitionState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state[partitionID]
}
