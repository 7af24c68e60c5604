package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExprColumnsCollectsBothOperands(t *testing.T) {
	e := BinExpr(OpAdd, Col("a"), Col("b"))
	require.Equal(t, []string{"a", "b"}, e.Columns())
}

func TestExprStringRendersInfix(t *testing.T) {
	e := BinExpr(OpAdd, Col("a"), Col("b"))
	require.Equal(t, "(a + b)", e.String())
}

func TestSelectExprOutputNameDefaultsToExprString(t *testing.T) {
	s := SelectExpr{Expr: BinExpr(OpMul, Col("price"), Col("qty"))}
	require.Equal(t, "(price * qty)", s.OutputName())
}

func TestSelectExprOutputNamePrefersAlias(t *testing.T) {
	s := SelectExpr{Expr: BinExpr(OpMul, Col("price"), Col("qty")), Alias: "total"}
	require.Equal(t, "total", s.OutputName())
}

func TestQueryReferencedColumnsIncludesExprOperands(t *testing.T) {
	q := &Query{
		Select: []SelectExpr{{Expr: BinExpr(OpAdd, Col("a"), Col("b"))}},
	}
	require.ElementsMatch(t, []string{"a", "b"}, q.ReferencedColumns())
}
