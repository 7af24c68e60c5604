package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
)

func rangesFrom(m map[string]column.Range) RangeProvider {
	return func(name string) (column.Range, bool) {
		r, ok := m[name]

		return r, ok
	}
}

func TestMayMatchPartitionDropsDisjointRange(t *testing.T) {
	ranges := rangesFrom(map[string]column.Range{"x": column.NewRange(0, 100)})

	require.False(t, MayMatchPartition(Cmp("x", Gt, IntLit(1000)), ranges))
	require.True(t, MayMatchPartition(Cmp("x", Gt, IntLit(50)), ranges))
	require.True(t, MayMatchPartition(Cmp("x", Eq, IntLit(50)), ranges))
	require.False(t, MayMatchPartition(Cmp("x", Eq, IntLit(1000)), ranges))
}

func TestMayMatchPartitionUnknownColumnIsConservative(t *testing.T) {
	ranges := rangesFrom(nil)
	require.True(t, MayMatchPartition(Cmp("y", Eq, IntLit(1)), ranges))
}

func TestMayMatchPartitionAndNarrows(t *testing.T) {
	ranges := rangesFrom(map[string]column.Range{"x": column.NewRange(0, 100)})

	pred := And(Cmp("x", Ge, IntLit(0)), Cmp("x", Gt, IntLit(1000)))
	require.False(t, MayMatchPartition(pred, ranges))
}

func TestMayMatchPartitionOrWidens(t *testing.T) {
	ranges := rangesFrom(map[string]column.Range{"x": column.NewRange(0, 100)})

	pred := Or(Cmp("x", Gt, IntLit(1000)), Cmp("x", Lt, IntLit(50)))
	require.True(t, MayMatchPartition(pred, ranges))
}

func TestMayMatchPartitionAllNullRangeNeverMatchesEq(t *testing.T) {
	ranges := rangesFrom(map[string]column.Range{"x": column.EmptyRange()})
	require.False(t, MayMatchPartition(Cmp("x", Eq, IntLit(1)), ranges))
}

func TestReferencedColumns(t *testing.T) {
	q := &Query{
		Select:  []SelectExpr{{Column: "fare", Agg: AggSum}},
		Where:   Cmp("distance", Gt, IntLit(5)),
		GroupBy: []string{"driver_id"},
		OrderBy: []OrderTerm{{Column: "fare", Desc: true}},
	}

	cols := q.ReferencedColumns()
	require.ElementsMatch(t, []string{"fare", "distance", "driver_id"}, cols)
}
