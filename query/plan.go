package query

import (
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
)

// RangeProvider resolves a named column's integer range within a partition
// (codec.StoredColumn.Range, surfaced without this package importing codec
// directly, to keep predicate pushdown independent of storage
// representation).
type RangeProvider func(column string) (r column.Range, ok bool)

// MayMatchPartition reports whether pred could plausibly be satisfied by a
// partition whose per-column ranges are given by ranges, per spec.md §4.2:
// "if the predicate cannot match (range disjoint), the partition is dropped
// from the plan." A true result means "decode and check"; false means the
// partition can be skipped without ever decoding it.
//
// Only integer-valued Eq/Lt/Le/Gt/Ge comparisons against a known range are
// pushed down; every other predicate shape (string/float comparisons, Ne,
// Not, or a column with no recorded range) conservatively returns true —
// "no information," never a false negative.
func MayMatchPartition(pred *Predicate, ranges RangeProvider) bool {
	if pred == nil {
		return true
	}

	switch {
	case pred.Compare != nil:
		return compareMayMatch(pred.Compare, ranges)
	case pred.And != nil:
		for _, sub := range pred.And {
			if !MayMatchPartition(sub, ranges) {
				return false
			}
		}

		return true
	case pred.Or != nil:
		if len(pred.Or) == 0 {
			return true
		}
		for _, sub := range pred.Or {
			if MayMatchPartition(sub, ranges) {
				return true
			}
		}

		return false
	case pred.Not != nil:
		// Negating a conservative "maybe" can't be done soundly without a
		// false-negative risk, so Not never narrows the plan.
		return true
	default:
		return true
	}
}

func compareMayMatch(cmp *CompareExpr, ranges RangeProvider) bool {
	if cmp.Value.Type != format.TypeInt64 {
		return true
	}

	r, ok := ranges(cmp.Column)
	if !ok {
		return true
	}

	v := cmp.Value.I

	switch cmp.Op {
	case Eq:
		return r.Contains(v)
	case Lt:
		return !r.Empty && r.Min < v
	case Le:
		return !r.Empty && r.Min <= v
	case Gt:
		return !r.Empty && r.Max > v
	case Ge:
		return !r.Empty && r.Max >= v
	default:
		return true
	}
}
