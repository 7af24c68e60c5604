package exec

import (
	"container/heap"
	"sort"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
	"github.com/cswinter/locustdb/query"
)

// orderKey reports the sort comparison of rows x and y for the given order
// terms, where colIndex maps an order column name to its position within a
// Row's Values. Returns <0, 0, >0 like a standard comparator.
func orderKey(x, y Row, terms []query.OrderTerm, colIndex map[string]int) int {
	for _, t := range terms {
		idx, ok := colIndex[t.Column]
		if !ok {
			continue
		}

		c := compareScalar(x.Values[idx], y.Values[idx])
		if t.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}

	return 0
}

func compareScalar(a, b column.AnyVal) int {
	switch a.Type {
	case format.TypeFloat:
		switch {
		case a.F < b.F:
			return -1
		case a.F > b.F:
			return 1
		default:
			return 0
		}
	case format.TypeString:
		switch {
		case a.S < b.S:
			return -1
		case a.S > b.S:
			return 1
		default:
			return 0
		}
	default:
		switch {
		case a.I < b.I:
			return -1
		case a.I > b.I:
			return 1
		default:
			return 0
		}
	}
}

// rowHeap is a bounded min-heap over Rows ordered so that the "worst" row
// (the one a new row must beat to be admitted) sits at the top, per
// spec.md §4.2/§4.4's per-partition bounded heap of size k.
type rowHeap struct {
	rows     []Row
	terms    []query.OrderTerm
	colIndex map[string]int
}

func (h *rowHeap) Len() int { return len(h.rows) }
func (h *rowHeap) Less(i, j int) bool {
	// Max-heap over "worseness": the row that would sort last (by the
	// requested order) is the one we most want at the top, ready to evict.
	return orderKey(h.rows[i], h.rows[j], h.terms, h.colIndex) > 0
}
func (h *rowHeap) Swap(i, j int) { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }
func (h *rowHeap) Push(x any)    { h.rows = append(h.rows, x.(Row)) }
func (h *rowHeap) Pop() any {
	old := h.rows
	n := len(old)
	item := old[n-1]
	h.rows = old[:n-1]

	return item
}

// topK maintains the best limit rows seen so far by the requested order.
type topK struct {
	h     *rowHeap
	limit int
}

func newTopK(terms []query.OrderTerm, colIndex map[string]int, limit int) *topK {
	return &topK{h: &rowHeap{terms: terms, colIndex: colIndex}, limit: limit}
}

func (t *topK) Offer(r Row) {
	if t.limit <= 0 {
		t.h.rows = append(t.h.rows, r)

		return
	}

	if t.h.Len() < t.limit {
		heap.Push(t.h, r)

		return
	}

	if orderKey(r, t.h.rows[0], t.h.terms, t.h.colIndex) < 0 {
		t.h.rows[0] = r
		heap.Fix(t.h, 0)
	}
}

// Rows drains the heap in best-first order.
func (t *topK) Rows() []Row {
	out := make([]Row, len(t.h.rows))
	copy(out, t.h.rows)

	sortRows(out, t.h.terms, t.h.colIndex)

	return out
}

// sortRows sorts rows in place, best-first by the given order terms.
func sortRows(rows []Row, terms []query.OrderTerm, colIndex map[string]int) {
	sort.Slice(rows, func(i, j int) bool {
		return orderKey(rows[i], rows[j], terms, colIndex) < 0
	})
}
