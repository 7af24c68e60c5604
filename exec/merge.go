package exec

import (
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/format"
	"github.com/cswinter/locustdb/query"
)

// FinalResult is the fully merged, final-ordered output of a query across
// every partition (spec.md §4.4's final merge task).
type FinalResult struct {
	Columns []string
	Rows    [][]column.AnyVal
}

// Merge combines every partition's PartialResult into one FinalResult,
// applying the query's global ORDER BY/LIMIT (spec.md §4.4: "cross-partition
// ordering is not preserved except for global ORDER BY"). A Cancelled
// partial anywhere in the set is fatal to the whole query.
func Merge(q *query.Query, partials []*PartialResult) (*FinalResult, error) {
	for _, p := range partials {
		if p != nil && p.Cancelled {
			return nil, errs.ErrCancelled
		}
	}

	columns := make([]string, len(q.Select))
	for i, s := range q.Select {
		columns[i] = s.OutputName()
	}

	if len(q.GroupBy) > 0 || hasAgg(q.Select) {
		return mergeGrouped(q, partials, columns)
	}

	return mergeRows(q, partials, columns)
}

func mergeGrouped(q *query.Query, partials []*PartialResult, columns []string) (*FinalResult, error) {
	combined := make(map[string]*GroupRow)

	for _, p := range partials {
		if p == nil {
			continue
		}
		for key, gr := range p.Grouped {
			cur, ok := combined[key]
			if !ok {
				combined[key] = &GroupRow{
					Key:        key,
					SelectVals: gr.SelectVals,
					Aggs:       gr.Aggs,
				}

				continue
			}

			for i, agg := range gr.Aggs {
				if agg == nil {
					continue
				}
				if cur.Aggs[i] == nil {
					cur.Aggs[i] = &aggState{}
				}
				cur.Aggs[i].merge(agg)
			}
		}
	}

	rows := make([]Row, 0, len(combined))
	for _, gr := range combined {
		vals := make([]column.AnyVal, len(q.Select))
		for i, s := range q.Select {
			if s.Agg == query.AggNone {
				vals[i] = gr.SelectVals[i]

				continue
			}
			vals[i] = finalizeAgg(s.Agg, gr.Aggs[i])
		}
		rows = append(rows, Row{Values: vals})
	}

	colIndex := selectIndex(q.Select)
	if len(q.OrderBy) > 0 {
		sortRows(rows, q.OrderBy, colIndex)
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	return toFinalResult(columns, rows), nil
}

func mergeRows(q *query.Query, partials []*PartialResult, columns []string) (*FinalResult, error) {
	var rows []Row
	for _, p := range partials {
		if p == nil {
			continue
		}
		rows = append(rows, p.Rows...)
	}

	colIndex := selectIndex(q.Select)
	if len(q.OrderBy) > 0 {
		sortRows(rows, q.OrderBy, colIndex)
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	return toFinalResult(columns, rows), nil
}

func selectIndex(selects []query.SelectExpr) map[string]int {
	idx := make(map[string]int, len(selects))
	for i, s := range selects {
		idx[s.OutputName()] = i
	}

	return idx
}

func toFinalResult(columns []string, rows []Row) *FinalResult {
	out := &FinalResult{Columns: columns, Rows: make([][]column.AnyVal, len(rows))}
	for i, r := range rows {
		out.Rows[i] = r.Values
	}

	return out
}

func finalizeAgg(fn query.AggFunc, state *aggState) column.AnyVal {
	if state == nil {
		if fn == query.AggCount {
			return column.AnyVal{Type: format.TypeInt64, I: 0}
		}

		return column.AnyVal{Type: format.TypeFloat, F: 0}
	}

	switch fn {
	case query.AggCount:
		return column.AnyVal{Type: format.TypeInt64, I: state.count}
	case query.AggSum:
		return column.AnyVal{Type: format.TypeFloat, F: state.sum}
	case query.AggMin:
		if state.isInt {
			return column.AnyVal{Type: format.TypeInt64, I: state.minI}
		}

		return column.AnyVal{Type: format.TypeFloat, F: state.min}
	case query.AggMax:
		if state.isInt {
			return column.AnyVal{Type: format.TypeInt64, I: state.maxI}
		}

		return column.AnyVal{Type: format.TypeFloat, F: state.max}
	default:
		return column.AnyVal{}
	}
}
