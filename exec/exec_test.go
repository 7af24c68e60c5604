package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/format"
	"github.com/cswinter/locustdb/query"
)

func buildCols() map[string]column.Buffer {
	return map[string]column.Buffer{
		"fare":      column.NewFloatBuffer([]float64{10, 20, 30, 40, 50}, nil),
		"driver_id": column.NewInt64Buffer([]int64{1, 1, 2, 2, 3}, nil),
		"distance":  column.NewInt64Buffer([]int64{5, 15, 25, 35, 45}, nil),
	}
}

func TestExecuteFilterProjection(t *testing.T) {
	cols := buildCols()
	q := &query.Query{
		Select: []query.SelectExpr{{Column: "fare"}},
		Where:  query.Cmp("distance", query.Gt, query.IntLit(20)),
	}

	result, err := Execute(context.Background(), q, cols, 5)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
}

func TestExecuteGroupBySum(t *testing.T) {
	cols := buildCols()
	q := &query.Query{
		Select:  []query.SelectExpr{{Column: "driver_id"}, {Column: "fare", Agg: query.AggSum, Alias: "total"}},
		GroupBy: []string{"driver_id"},
	}

	result, err := Execute(context.Background(), q, cols, 5)
	require.NoError(t, err)
	require.Len(t, result.Grouped, 3)

	final, err := Merge(q, []*PartialResult{result})
	require.NoError(t, err)
	require.Len(t, final.Rows, 3)

	totals := map[int64]float64{}
	for _, row := range final.Rows {
		totals[row[0].I] = row[1].F
	}
	require.Equal(t, 30.0, totals[1])
	require.Equal(t, 70.0, totals[2])
	require.Equal(t, 50.0, totals[3])
}

func TestExecuteOrderByLimit(t *testing.T) {
	cols := buildCols()
	q := &query.Query{
		Select:  []query.SelectExpr{{Column: "fare"}},
		OrderBy: []query.OrderTerm{{Column: "fare", Desc: true}},
		Limit:   2,
	}

	result, err := Execute(context.Background(), q, cols, 5)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	require.Equal(t, 50.0, result.Rows[0].Values[0].F)
	require.Equal(t, 40.0, result.Rows[1].Values[0].F)
}

func TestExecuteCancellation(t *testing.T) {
	cols := buildCols()
	q := &query.Query{Select: []query.SelectExpr{{Column: "fare"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Execute(ctx, q, cols, 5)
	require.NoError(t, err)
	require.True(t, result.Cancelled)
}

func TestExecuteBinaryArithmeticPropagatesNulls(t *testing.T) {
	aNulls := column.NewNullMask(3)
	aNulls.SetNull(1)
	bNulls := column.NewNullMask(3)
	bNulls.SetNull(2)

	cols := map[string]column.Buffer{
		"a": column.NewInt64Buffer([]int64{1, 0, 3}, aNulls),
		"b": column.NewInt64Buffer([]int64{10, 20, 0}, bNulls),
	}

	q := &query.Query{
		Select: []query.SelectExpr{{Expr: query.BinExpr(query.OpAdd, query.Col("a"), query.Col("b"))}},
	}

	result, err := Execute(context.Background(), q, cols, 3)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	require.Equal(t, format.TypeInt64, result.Rows[0].Values[0].Type)
	require.Equal(t, int64(11), result.Rows[0].Values[0].I)
	require.Equal(t, format.TypeNull, result.Rows[1].Values[0].Type)
	require.Equal(t, format.TypeNull, result.Rows[2].Values[0].Type)
}

func TestMergeAcrossPartitionsSumsAggregates(t *testing.T) {
	q := &query.Query{
		Select:  []query.SelectExpr{{Column: "driver_id"}, {Column: "fare", Agg: query.AggCount, Alias: "n"}},
		GroupBy: []string{"driver_id"},
	}

	p1, err := Execute(context.Background(), q, buildCols(), 5)
	require.NoError(t, err)
	p2, err := Execute(context.Background(), q, buildCols(), 5)
	require.NoError(t, err)

	final, err := Merge(q, []*PartialResult{p1, p2})
	require.NoError(t, err)

	counts := map[int64]int64{}
	for _, row := range final.Rows {
		counts[row[0].I] = row[1].I
	}
	require.Equal(t, int64(4), counts[1])
	require.Equal(t, int64(4), counts[2])
	require.Equal(t, int64(2), counts[3])
}
