package wal

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/internal/options"
)

// SegmentStore is the byte-range blob boundary the WAL writes through;
// object-store backends are out of scope (spec.md §1) and are expected to
// satisfy this interface. MemStore provides an in-memory implementation
// sufficient for tests and for an all-in-memory deployment.
type SegmentStore interface {
	Put(id uint64, data []byte) error
	Get(id uint64) ([]byte, error)
	List() ([]uint64, error)
	Delete(id uint64) error
}

// MemStore is a SegmentStore backed by an in-memory map, the default store
// used when no durable backing store is configured.
type MemStore struct {
	mu       sync.Mutex
	segments map[uint64][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{segments: make(map[uint64][]byte)}
}

func (m *MemStore) Put(id uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := append([]byte(nil), data...)
	m.segments[id] = cp

	return nil
}

func (m *MemStore) Get(id uint64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.segments[id]
	if !ok {
		return nil, errs.ErrWalSegmentCorrupt
	}

	return data, nil
}

func (m *MemStore) List() ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint64, 0, len(m.segments))
	for id := range m.segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (m *MemStore) Delete(id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.segments, id)

	return nil
}

// Config holds WAL construction parameters, set through functional Options
// the way the teacher configures its encoders (internal/options).
type Config struct {
	store  SegmentStore
	logger zerolog.Logger
}

// Option configures a WAL at construction time.
type Option = options.Option[*Config]

// WithStore sets the segment store; defaults to an in-memory MemStore.
func WithStore(store SegmentStore) Option {
	return options.NoError(func(c *Config) { c.store = store })
}

// WithLogger attaches a zerolog logger for WAL lifecycle events (append,
// replay, GC); defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) { c.logger = logger })
}

// WAL is the durable, segmented append log. Writes are single-writer
// (guarded by mu); replay is safe to call concurrently with nothing else
// since it only runs at startup (spec.md §5).
type WAL struct {
	mu     sync.Mutex
	store  SegmentStore
	logger zerolog.Logger
	nextID uint64
}

// New constructs a WAL. By default it starts empty at segment id 1 with an
// in-memory store; call Replay to recover an existing log, which also
// advances the next id past the highest segment it loads.
func New(opts ...Option) (*WAL, error) {
	cfg := &Config{store: NewMemStore(), logger: zerolog.Nop()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &WAL{store: cfg.store, logger: cfg.logger, nextID: 1}, nil
}

// Append serializes seg with a freshly allocated, strictly increasing id and
// durably appends it, per spec.md §4.5 step 1 ("Serializes the batch into a
// WAL segment with a freshly allocated id, appends to durable log, returns
// to caller"). It returns the id assigned.
func (w *WAL) Append(tables []TableSegment) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++

	seg := Segment{ID: id, Tables: tables}
	data := Serialize(seg)

	if err := w.store.Put(id, data); err != nil {
		return 0, errs.Classify(errs.KindIo, err)
	}

	w.logger.Debug().Uint64("segment_id", id).Int("tables", len(tables)).Msg("wal: appended segment")

	return id, nil
}

// NextID reports the id the next Append call will assign.
func (w *WAL) NextID() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.nextID
}

// SetNextID advances the id allocator, used during recovery to ensure
// metadata's next_wal_id invariant (spec.md §3: "metadata's next_wal_id >
// max on-disk WAL id") holds once the WAL resumes writing.
func (w *WAL) SetNextID(next uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if next > w.nextID {
		w.nextID = next
	}
}

// Replay loads and deserializes every segment with id >= firstUnsealedID, in
// ascending id order, per spec.md §4.5's recovery procedure. A corrupt frame
// is logged and skipped rather than aborting recovery (spec.md §7,
// CorruptData: "best-effort, consistent with small ingestion loss
// acceptable").
func (w *WAL) Replay(firstUnsealedID uint64) ([]Segment, error) {
	ids, err := w.store.List()
	if err != nil {
		return nil, errs.Classify(errs.KindIo, err)
	}

	var segments []Segment
	var maxID uint64

	for _, id := range ids {
		if id < firstUnsealedID {
			continue
		}

		data, err := w.store.Get(id)
		if err != nil {
			return nil, errs.Classify(errs.KindIo, err)
		}

		seg, err := Deserialize(data)
		if err != nil {
			w.logger.Warn().Uint64("segment_id", id).Err(err).Msg("wal: skipping corrupt segment during replay")

			continue
		}

		segments = append(segments, seg)
		if id > maxID {
			maxID = id
		}
	}

	w.SetNextID(maxID + 1)

	return segments, nil
}

// GC deletes every segment strictly below sealedID, the set that becomes
// redundant once a seal's metadata update is durable (spec.md §4.5: "WAL
// segments strictly below the sealed id become eligible for GC after
// metadata is durably written").
func (w *WAL) GC(sealedID uint64) error {
	ids, err := w.store.List()
	if err != nil {
		return errs.Classify(errs.KindIo, err)
	}

	for _, id := range ids {
		if id >= sealedID {
			continue
		}
		if err := w.store.Delete(id); err != nil {
			return errs.Classify(errs.KindIo, err)
		}
	}

	w.logger.Debug().Uint64("sealed_id", sealedID).Msg("wal: garbage collected segments")

	return nil
}
