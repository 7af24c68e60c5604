package exec

import (
	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
	"github.com/cswinter/locustdb/query"
)

// evalSelect evaluates one select expression for row, dispatching through
// evalExpr so a bare column and a computed expression share one path.
func evalSelect(s query.SelectExpr, cols map[string]column.Buffer, row int) column.AnyVal {
	return evalExpr(s.AsExpr(), cols, row)
}

// evalExpr evaluates e for row, a bare column lookup for a leaf expression
// or a binary arithmetic primitive (spec.md §4.3) for an internal node. Null
// propagates: either operand null makes the result null (spec.md §8
// scenario 4: "SELECT a+b" over {a:[1,null,3], b:[10,20,null]} returns
// [11, null, null]).
func evalExpr(e *query.Expr, cols map[string]column.Buffer, row int) column.AnyVal {
	if e == nil {
		return column.AnyVal{Type: format.TypeNull}
	}
	if !e.IsBinary() {
		return anyValAt(cols[e.Column], row)
	}

	left := evalExpr(e.Left, cols, row)
	right := evalExpr(e.Right, cols, row)
	if left.Type == format.TypeNull || right.Type == format.TypeNull {
		return column.AnyVal{Type: format.TypeNull}
	}

	return applyBinOp(e.Op, left, right)
}

// applyBinOp computes a typed arithmetic result: float if either operand is
// a float, int64 otherwise (narrower integer columns are already widened to
// int64 by the time they reach an execution buffer, per spec §3).
func applyBinOp(op query.ExprOp, left, right column.AnyVal) column.AnyVal {
	if left.Type == format.TypeFloat || right.Type == format.TypeFloat {
		return column.AnyVal{Type: format.TypeFloat, F: arithFloat(op, asFloat(left), asFloat(right))}
	}

	return column.AnyVal{Type: format.TypeInt64, I: arithInt(op, left.I, right.I)}
}

func asFloat(v column.AnyVal) float64 {
	if v.Type == format.TypeFloat {
		return v.F
	}

	return float64(v.I)
}

func arithFloat(op query.ExprOp, a, b float64) float64 {
	switch op {
	case query.OpAdd:
		return a + b
	case query.OpSub:
		return a - b
	case query.OpMul:
		return a * b
	case query.OpDiv:
		if b == 0 {
			return 0
		}

		return a / b
	default:
		return 0
	}
}

func arithInt(op query.ExprOp, a, b int64) int64 {
	switch op {
	case query.OpAdd:
		return a + b
	case query.OpSub:
		return a - b
	case query.OpMul:
		return a * b
	case query.OpDiv:
		if b == 0 {
			return 0
		}

		return a / b
	default:
		return 0
	}
}
