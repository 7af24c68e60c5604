package exec

import "github.com/cswinter/locustdb/column"

// aggState accumulates one aggregate's running value across every row
// assigned to a group, combined associatively and commutatively (spec.md
// §4.4: "Partial results are combined by an associative + commutative
// merge").
type aggState struct {
	count   int64
	sum     float64
	sumIsFP bool
	min     float64
	max     float64
	minI    int64
	maxI    int64
	isInt   bool
	set     bool
}

func (a *aggState) observeInt(v int64) {
	a.isInt = true
	a.count++
	a.sum += float64(v)
	if !a.set || v < a.minI {
		a.minI = v
	}
	if !a.set || v > a.maxI {
		a.maxI = v
	}
	a.set = true
}

func (a *aggState) observeFloat(v float64) {
	a.sumIsFP = true
	a.count++
	a.sum += v
	if !a.set || v < a.min {
		a.min = v
	}
	if !a.set || v > a.max {
		a.max = v
	}
	a.set = true
}

func (a *aggState) merge(b *aggState) {
	if !b.set {
		return
	}
	if !a.set {
		*a = *b

		return
	}

	a.count += b.count
	a.sum += b.sum
	a.isInt = a.isInt && b.isInt
	a.sumIsFP = a.sumIsFP || b.sumIsFP

	if a.isInt {
		if b.minI < a.minI {
			a.minI = b.minI
		}
		if b.maxI > a.maxI {
			a.maxI = b.maxI
		}
	} else {
		if b.min < a.min {
			a.min = b.min
		}
		if b.max > a.max {
			a.max = b.max
		}
	}
}

// GroupRow is one output row of a grouped/aggregated query: the group-by
// key's column values plus the computed aggregate state per select
// expression index.
type GroupRow struct {
	Key        string
	SelectVals []column.AnyVal
	Aggs       []*aggState
}

// PartialResult is one partition's contribution to a query, ready to be
// combined with every other partition's PartialResult by an associative,
// commutative merge (spec.md §4.4).
type PartialResult struct {
	// Grouped holds one entry per distinct group key, in no particular
	// order (ordering, when requested, is applied at merge time).
	Grouped map[string]*GroupRow

	// Rows holds ungrouped projected rows, used when the query has no
	// aggregate/group-by — a plain projection, optionally to be
	// globally sorted and limited at merge time.
	Rows []Row

	// Cancelled marks a partial result the merger must treat as fatal
	// (spec.md §4.4: "cancelled tasks ... return a Cancelled partial
	// result that the merger treats as fatal").
	Cancelled bool
}

// Row is one ungrouped output row: one AnyVal per select expression.
type Row struct {
	Values []column.AnyVal
}
