package column

// Range is the (min, max) bound on an integer column's non-null values, used
// by the planner for predicate pushdown (§4.2) and by the encoder to choose
// between Add/Delta/arithmetic-progression codec pipelines (§4.1).
//
// An Empty range means the column has no non-null values (all-null column).
// When non-empty, Min and Max strictly contain every non-null value: no
// non-null value in the column falls outside [Min, Max].
type Range struct {
	Min, Max int64
	Empty    bool
}

// EmptyRange is the sentinel range for an all-null column.
func EmptyRange() Range { return Range{Empty: true} }

// NewRange returns the range [min, max]. Panics if min > max — callers are
// expected to compute min/max from actual data, where this can't happen.
func NewRange(min, max int64) Range {
	if min > max {
		panic("column: invalid range, min > max")
	}

	return Range{Min: min, Max: max}
}

// Contains reports whether v lies within [Min, Max]. It is false for an
// Empty range, since an all-null column holds no value to match.
func (r Range) Contains(v int64) bool {
	if r.Empty {
		return false
	}

	return v >= r.Min && v <= r.Max
}

// Disjoint reports whether no value can satisfy both r and other — the
// pushdown test used to drop a partition from a plan entirely (§4.2).
func (r Range) Disjoint(other Range) bool {
	if r.Empty || other.Empty {
		return true
	}

	return r.Max < other.Min || other.Max < r.Min
}

// Width returns max-min, used by the encoder to decide whether Add{min} with
// a narrow integer type suffices to represent the column.
func (r Range) Width() int64 {
	if r.Empty {
		return 0
	}

	return r.Max - r.Min
}
