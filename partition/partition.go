package partition

import (
	"sort"

	"github.com/cswinter/locustdb/codec"
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/internal/hash"
)

// Subpartition is the on-disk unit of one or more columns that are read
// together. Key is the hash of the sorted column names inside it; it is
// written into the partition blob.
// LargestColumn records the name of the biggest column, a cache heuristic
// named explicitly in spec.md §3.
type Subpartition struct {
	Key           uint64
	LargestColumn string
	Columns       []codec.StoredColumn
}

func subpartitionKey(names []string) uint64 {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	joined := ""
	for _, n := range sorted {
		joined += n + "\x00"
	}

	return hash.ID(joined)
}

// newSubpartition builds a single-column subpartition, the grouping left
// open by spec.md §9 ("initial implementation may place one column per
// subpartition") for this port, since choosing a smarter co-location
// heuristic needs query-pattern statistics this layer doesn't have.
func newSubpartition(sc codec.StoredColumn) Subpartition {
	return Subpartition{
		Key:           subpartitionKey([]string{sc.Name}),
		LargestColumn: sc.Name,
		Columns:       []codec.StoredColumn{sc},
	}
}

// Partition is an immutable, fixed-row-count block of columnar data,
// identified by a 64-bit id (spec.md §3). Sealed partitions are never
// mutated in place; compaction produces a new Partition.
type Partition struct {
	ID            uint64
	Len           int
	Subpartitions []Subpartition
}

// Seal encodes a row-batch of columns into a new immutable Partition. An
// empty batch (zero rows) is a no-op per spec.md §8's boundary case: Seal
// returns nil and no partition is created.
func Seal(id uint64, batch map[string]column.Buffer, n int) *Partition {
	if n == 0 {
		return nil
	}

	names := make([]string, 0, len(batch))
	for name := range batch {
		names = append(names, name)
	}
	sort.Strings(names)

	subs := make([]Subpartition, 0, len(names))
	for _, name := range names {
		sc := codec.Encode(name, batch[name])
		subs = append(subs, newSubpartition(sc))
	}

	return &Partition{ID: id, Len: n, Subpartitions: subs}
}

// Column returns the stored form of a named column, or false if the
// partition has no such column (the caller should treat it as all-null,
// per spec.md §3's schema-union rule).
func (p *Partition) Column(name string) (codec.StoredColumn, bool) {
	for _, sub := range p.Subpartitions {
		for _, c := range sub.Columns {
			if c.Name == name {
				return c, true
			}
		}
	}

	return codec.StoredColumn{}, false
}

// Decode decodes a named column into an execution buffer, or an all-null
// buffer of the partition's length if the column is absent.
func (p *Partition) Decode(name string) (column.Buffer, error) {
	sc, ok := p.Column(name)
	if !ok {
		return column.NewNullBuffer(p.Len), nil
	}

	return codec.Decode(sc)
}

// ColumnNames returns every column name present in the partition, in no
// particular order.
func (p *Partition) ColumnNames() []string {
	var names []string
	for _, sub := range p.Subpartitions {
		for _, c := range sub.Columns {
			names = append(names, c.Name)
		}
	}

	return names
}

// Recompact re-encodes every column of p with a fresh statistics-driven
// codec choice (spec.md §4.6); the storage manager's Compact re-seals merged
// partitions with Seal directly and does not call it. Now that a partition is immutable and fully populated, a tighter pipeline
// may be available than the one chosen incrementally during ingestion.
func (p *Partition) Recompact() (*Partition, error) {
	batch := make(map[string]column.Buffer)
	for _, name := range p.ColumnNames() {
		buf, err := p.Decode(name)
		if err != nil {
			return nil, errs.Classify(errs.KindCorruptData, err)
		}
		batch[name] = buf
	}

	return Seal(p.ID, batch, p.Len), nil
}
