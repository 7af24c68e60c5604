package exec

import (
	"context"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
	"github.com/cswinter/locustdb/query"
)

// Execute runs q's operator graph over one partition's decoded column
// buffers, batch-at-a-time, per spec.md §4.3. ctx is checked between
// batches so a cancelled query can stop early (spec.md §4.4): a cancelled
// execution returns a PartialResult with Cancelled set, never a partial set
// of rows silently passed off as complete.
func Execute(ctx context.Context, q *query.Query, cols map[string]column.Buffer, n int) (*PartialResult, error) {
	grouped := len(q.GroupBy) > 0 || hasAgg(q.Select)

	result := &PartialResult{}
	if grouped {
		result.Grouped = make(map[string]*GroupRow)
	}

	colIndex := make(map[string]int, len(q.Select))
	for i, s := range q.Select {
		colIndex[s.OutputName()] = i
	}

	var tk *topK
	if !grouped && q.Limit > 0 && len(q.OrderBy) > 0 {
		tk = newTopK(q.OrderBy, colIndex, q.Limit)
	}

	for start := 0; start < n; start += DefaultBatchSize {
		select {
		case <-ctx.Done():
			return &PartialResult{Cancelled: true}, nil
		default:
		}

		batchLen := DefaultBatchSize
		if start+batchLen > n {
			batchLen = n - start
		}

		mask, cleanup, err := evalPredicate(q.Where, cols, start, batchLen)
		if err != nil {
			return nil, err
		}

		for i := 0; i < batchLen; i++ {
			if !mask[i] {
				continue
			}
			row := start + i

			if grouped {
				applyGroupedRow(result, q, cols, row)

				continue
			}

			r := projectRow(q, cols, row)
			if tk != nil {
				tk.Offer(r)
			} else {
				result.Rows = append(result.Rows, r)
			}
		}

		cleanup()
	}

	if tk != nil {
		result.Rows = tk.Rows()
	}

	return result, nil
}

func hasAgg(selects []query.SelectExpr) bool {
	for _, s := range selects {
		if s.Agg != query.AggNone {
			return true
		}
	}

	return false
}

func projectRow(q *query.Query, cols map[string]column.Buffer, row int) Row {
	vals := make([]column.AnyVal, len(q.Select))
	for i, s := range q.Select {
		vals[i] = evalSelect(s, cols, row)
	}

	return Row{Values: vals}
}

func applyGroupedRow(result *PartialResult, q *query.Query, cols map[string]column.Buffer, row int) {
	key := groupKey(cols, q.GroupBy, row)

	gr, ok := result.Grouped[key]
	if !ok {
		gr = &GroupRow{
			Key:        key,
			SelectVals: make([]column.AnyVal, len(q.Select)),
			Aggs:       make([]*aggState, len(q.Select)),
		}
		for i, s := range q.Select {
			if s.Agg == query.AggNone {
				gr.SelectVals[i] = evalSelect(s, cols, row)
			}
		}
		result.Grouped[key] = gr
	}

	for i, s := range q.Select {
		if s.Agg == query.AggNone {
			continue
		}

		v := evalSelect(s, cols, row)
		if v.Type == format.TypeNull {
			continue
		}

		if gr.Aggs[i] == nil {
			gr.Aggs[i] = &aggState{}
		}

		observeAgg(gr.Aggs[i], v)
	}
}

func observeAgg(state *aggState, v column.AnyVal) {
	switch v.Type {
	case format.TypeFloat:
		state.observeFloat(v.F)
	case format.TypeInt64, format.TypeUint64:
		state.observeInt(v.I)
	}
}
