// Package locustdb is the top-level facade tying the storage manager, query
// planner, vectorized executor, and scheduler into the Executor API spec.md
// §6 names: "submit(query, deadline?) -> stream<BatchResult> | Error",
// "ingest(table, batch) -> Ack | Error", "stats() -> {memory, cache hit
// rate, per-partition counts}". The out-of-scope collaborators (REPL, CSV
// ingestion, HTTP) sit on the far side of this boundary.
package locustdb

import (
	"context"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/config"
	"github.com/cswinter/locustdb/errs"
	"github.com/cswinter/locustdb/exec"
	"github.com/cswinter/locustdb/query"
	"github.com/cswinter/locustdb/scheduler"
	"github.com/cswinter/locustdb/storage"
)

// DB is an embeddable instance of the storage-and-execution core: a resident
// partition catalog plus a query scheduler running against it.
type DB struct {
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
}

// Open constructs a DB from a parsed config.Config, wiring the storage
// manager's memory budgets and the scheduler's worker pool to the values
// spec.md §6's CLI surface documents.
func Open(cfg *config.Config) (*DB, error) {
	const bytesPerGB = 1 << 30

	m, err := storage.NewManager(
		storage.WithDecodedBudget(int64(cfg.MemLimitTablesGB) * bytesPerGB),
	)
	if err != nil {
		return nil, err
	}

	return &DB{
		manager:   m,
		scheduler: scheduler.New(m, scheduler.WithWorkers(cfg.Threads)),
	}, nil
}

// Ingest appends a row-batch to table, per spec.md §6's "ingest(table,
// batch) -> Ack | Error": WAL-durable before this call returns, sealing a
// new partition whenever the table's buffered rows reach the partition-size
// target.
func (db *DB) Ingest(table string, batch map[string]column.Buffer, n int) error {
	if table == "" {
		return errs.ErrEmptyTableName
	}

	return db.manager.Ingest(table, batch, n)
}

// Submit runs q to completion, per spec.md §6's "submit(query, deadline?) ->
// stream<BatchResult> | Error" collapsed to a single FinalResult (this
// module's scope ends at "final result is assembled," per spec.md's data
// flow; streaming the result back to a caller is a collaborator concern).
// Pass a ctx with a deadline for spec.md §4.4's cooperative cancellation.
func (db *DB) Submit(ctx context.Context, q *query.Query) (*exec.FinalResult, error) {
	if q.Table == "" {
		return nil, errs.ErrEmptyTableName
	}

	return db.scheduler.Run(ctx, q)
}

// Stats reports spec.md §6's "stats() -> {memory, cache hit rate,
// per-partition counts}".
func (db *DB) Stats() storage.Stats {
	return db.manager.Stats()
}

// Flush seals a table's buffered rows into a partition even if the
// partition-size target has not been reached (used at shutdown, or by a
// collaborator that wants durability checkpoints between ingests).
func (db *DB) Flush(table string) error {
	return db.manager.Flush(table)
}

// Recover replays WAL segments with id >= firstUnsealedID into their
// tables' write buffers, per spec.md §3's recovery procedure: "load
// metadata; for every WAL segment with id >= metadata's first-unsealed id,
// replay into the write buffer."
func (db *DB) Recover(firstUnsealedID uint64) error {
	return db.manager.Recover(firstUnsealedID)
}
