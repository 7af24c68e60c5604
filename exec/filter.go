package exec

import (
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/internal/pool"
	"github.com/cswinter/locustdb/query"
)

// evalPredicate computes the keep-mask for rows [start, start+n) of cols,
// returning a pooled []bool the caller must release via the returned
// cleanup (internal/pool's scratch-buffer idiom, reused here for the
// executor's boolean masks per spec.md §4.3's typed scratch-buffer pool).
// A nil predicate keeps every row.
func evalPredicate(pred *query.Predicate, cols map[string]column.Buffer, start, n int) ([]bool, func(), error) {
	if pred == nil {
		mask, cleanup := pool.GetBoolSlice(n)
		for i := range mask {
			mask[i] = true
		}

		return mask, cleanup, nil
	}

	switch {
	case pred.Compare != nil:
		return evalCompare(pred.Compare, cols, start, n)
	case pred.And != nil:
		return evalConjunction(pred.And, cols, start, n, true)
	case pred.Or != nil:
		return evalConjunction(pred.Or, cols, start, n, false)
	case pred.Not != nil:
		sub, cleanup, err := evalPredicate(pred.Not, cols, start, n)
		if err != nil {
			return nil, nil, err
		}
		for i := range sub {
			sub[i] = !sub[i]
		}

		return sub, cleanup, nil
	default:
		return nil, nil, errs.ErrUnsupportedConstruct
	}
}

func evalConjunction(preds []*query.Predicate, cols map[string]column.Buffer, start, n int, and bool) ([]bool, func(), error) {
	out, outCleanup := pool.GetBoolSlice(n)
	for i := range out {
		out[i] = and
	}

	for _, p := range preds {
		sub, subCleanup, err := evalPredicate(p, cols, start, n)
		if err != nil {
			outCleanup()

			return nil, nil, err
		}

		for i := range out {
			if and {
				out[i] = out[i] && sub[i]
			} else {
				out[i] = out[i] || sub[i]
			}
		}
		subCleanup()
	}

	return out, outCleanup, nil
}

func evalCompare(cmp *query.CompareExpr, cols map[string]column.Buffer, start, n int) ([]bool, func(), error) {
	mask, cleanup := pool.GetBoolSlice(n)

	buf, ok := cols[cmp.Column]
	if !ok {
		return nil, nil, errs.ErrUnknownColumn
	}

	switch b := buf.(type) {
	case *column.Int64Buffer:
		for i := 0; i < n; i++ {
			row := start + i
			if b.IsNull(row) {
				mask[i] = false

				continue
			}
			mask[i] = compareInt64(b.Values[row], cmp.Op, cmp.Value.I)
		}
	case *column.Uint64Buffer:
		for i := 0; i < n; i++ {
			row := start + i
			if b.IsNull(row) {
				mask[i] = false

				continue
			}
			mask[i] = compareInt64(int64(b.Values[row]), cmp.Op, cmp.Value.I)
		}
	case *column.FloatBuffer:
		for i := 0; i < n; i++ {
			row := start + i
			if b.IsNull(row) {
				mask[i] = false

				continue
			}
			mask[i] = compareFloat64(b.Values[row], cmp.Op, cmp.Value.F)
		}
	case *column.StringBuffer:
		for i := 0; i < n; i++ {
			row := start + i
			if b.IsNull(row) {
				mask[i] = false

				continue
			}
			mask[i] = compareString(b.Values[row], cmp.Op, cmp.Value.S)
		}
	case *column.NullBuffer:
		for i := range mask {
			mask[i] = false
		}
	default:
		cleanup()

		return nil, nil, errs.ErrTypeMismatch
	}

	return mask, cleanup, nil
}

func compareInt64(v int64, op query.CompareOp, lit int64) bool {
	switch op {
	case query.Eq:
		return v == lit
	case query.Ne:
		return v != lit
	case query.Lt:
		return v < lit
	case query.Le:
		return v <= lit
	case query.Gt:
		return v > lit
	case query.Ge:
		return v >= lit
	default:
		return false
	}
}

func compareFloat64(v float64, op query.CompareOp, lit float64) bool {
	switch op {
	case query.Eq:
		return v == lit
	case query.Ne:
		return v != lit
	case query.Lt:
		return v < lit
	case query.Le:
		return v <= lit
	case query.Gt:
		return v > lit
	case query.Ge:
		return v >= lit
	default:
		return false
	}
}

func compareString(v string, op query.CompareOp, lit string) bool {
	switch op {
	case query.Eq:
		return v == lit
	case query.Ne:
		return v != lit
	case query.Lt:
		return v < lit
	case query.Le:
		return v <= lit
	case query.Gt:
		return v > lit
	case query.Ge:
		return v >= lit
	default:
		return false
	}
}
