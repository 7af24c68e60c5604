package locustdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/config"
	"github.com/cswinter/locustdb/query"
)

func TestDBIngestAndSubmit(t *testing.T) {
	cfg := config.Default()
	cfg.Threads = 2

	db, err := Open(cfg)
	require.NoError(t, err)

	batch := map[string]column.Buffer{
		"fare":      column.NewFloatBuffer([]float64{10, 20, 30}, nil),
		"driver_id": column.NewInt64Buffer([]int64{1, 1, 2}, nil),
	}
	require.NoError(t, db.Ingest("trips", batch, 3))
	require.NoError(t, db.Flush("trips"))

	q := &query.Query{
		Table:   "trips",
		Select:  []query.SelectExpr{{Column: "driver_id"}, {Column: "fare", Agg: query.AggSum, Alias: "total"}},
		GroupBy: []string{"driver_id"},
	}

	final, err := db.Submit(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, final.Rows, 2)

	stats := db.Stats()
	require.Equal(t, 1, stats.Tables["trips"])
}

func TestDBIngestRejectsEmptyTableName(t *testing.T) {
	db, err := Open(config.Default())
	require.NoError(t, err)

	err = db.Ingest("", map[string]column.Buffer{}, 0)
	require.Error(t, err)
}
