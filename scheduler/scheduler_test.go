package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/query"
	"github.com/cswinter/locustdb/storage"
)

func seedManager(t *testing.T) *storage.Manager {
	t.Helper()

	m, err := storage.NewManager()
	require.NoError(t, err)

	fares := []float64{10, 20, 30, 40, 50}
	drivers := []int64{1, 1, 2, 2, 3}

	for part := 0; part < 2; part++ {
		batch := map[string]column.Buffer{
			"fare":      column.NewFloatBuffer(fares, nil),
			"driver_id": column.NewInt64Buffer(drivers, nil),
		}
		require.NoError(t, m.Ingest("trips", batch, len(fares)))
	}
	require.NoError(t, m.Flush("trips"))

	return m
}

func TestSchedulerRunGroupBySumAcrossPartitions(t *testing.T) {
	m := seedManager(t)
	s := New(m, WithWorkers(2))

	q := &query.Query{
		Table:   "trips",
		Select:  []query.SelectExpr{{Column: "driver_id"}, {Column: "fare", Agg: query.AggSum, Alias: "total"}},
		GroupBy: []string{"driver_id"},
	}

	final, err := s.Run(context.Background(), q)
	require.NoError(t, err)

	totals := map[int64]float64{}
	for _, row := range final.Rows {
		totals[row[0].I] = row[1].F
	}
	require.Equal(t, 60.0, totals[1])
	require.Equal(t, 140.0, totals[2])
	require.Equal(t, 100.0, totals[3])
}

func TestSchedulerRunSkipsPartitionsViaPushdown(t *testing.T) {
	m := seedManager(t)
	s := New(m, WithWorkers(4))

	q := &query.Query{
		Table:  "trips",
		Select: []query.SelectExpr{{Column: "fare"}},
		Where:  query.Cmp("driver_id", query.Gt, query.IntLit(100)),
	}

	final, err := s.Run(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, final.Rows, 0)
}

func TestSchedulerRunCancellation(t *testing.T) {
	m := seedManager(t)
	s := New(m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &query.Query{
		Table:  "trips",
		Select: []query.SelectExpr{{Column: "fare"}},
	}

	_, err := s.Run(ctx, q)
	require.Error(t, err)
}
