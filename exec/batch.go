// Package exec is the vectorized batch executor (spec.md §4.3): it walks a
// partition's decoded column buffers in fixed-size batches, evaluates the
// query's predicate and aggregates into a typed scratch buffer pool, and
// hands back a PartialResult for the scheduler to merge across partitions.
package exec

import "github.com/cswinter/locustdb/format"

// DefaultBatchSize is the batch width operators exchange column slices in,
// within spec.md §4.3's stated 1024-65536 range.
const DefaultBatchSize = 8192

// typeOf reports the logical type a column.Buffer carries, used to pick a
// specialized typed primitive instead of a generic interface{}-based one
// (spec.md §4.2: "picking, for each primitive x type combination, a
// specialized operator").
func typeOf(t format.ValueType) string {
	switch t {
	case format.TypeInt64:
		return "i64"
	case format.TypeUint64:
		return "u64"
	case format.TypeFloat:
		return "f64"
	case format.TypeString:
		return "str"
	default:
		return "null"
	}
}
