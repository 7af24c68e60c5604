// Package scheduler fans a query out across a table's partitions using a
// fixed worker pool and merges the per-partition results, per spec.md §4.4:
// "one task per partition ... a fixed worker pool ... a final merge task."
package scheduler

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/cswinter/locustdb/column"
	"github.com/cswinter/locustdb/exec"
	"github.com/cswinter/locustdb/internal/options"
	"github.com/cswinter/locustdb/query"
	"github.com/cswinter/locustdb/storage"
)

// Config holds Scheduler construction parameters.
type Config struct {
	workers int
}

type Option = options.Option[*Config]

// WithWorkers overrides the worker pool size. The default is runtime.NumCPU().
func WithWorkers(n int) Option {
	return options.NoError(func(c *Config) { c.workers = n })
}

// Scheduler runs queries against a storage.Manager's resident catalog,
// bounding concurrent per-partition work to a fixed pool (spec.md §4.4:
// "bounded by a fixed worker pool, not one goroutine per partition").
type Scheduler struct {
	db   *storage.Manager
	pool *semaphore.Weighted
}

// New builds a Scheduler over db. Without WithWorkers, the pool size is
// runtime.NumCPU().
func New(db *storage.Manager, opts ...Option) *Scheduler {
	cfg := &Config{workers: runtime.NumCPU()}
	_ = options.Apply(cfg, opts...)
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	return &Scheduler{db: db, pool: semaphore.NewWeighted(int64(cfg.workers))}
}

// Run executes q: one task per sealed partition of q.Table, predicate
// pushdown first (query.MayMatchPartition) to skip partitions that cannot
// match without decoding them, then exec.Execute over the fetched columns.
// Every task's PartialResult is combined by exec.Merge once all complete. A
// failing or cancelled task cancels the rest via the errgroup-derived
// context (spec.md §4.4: "a cancelled task ... the merger treats [it] as
// fatal").
func (s *Scheduler) Run(ctx context.Context, q *query.Query) (*exec.FinalResult, error) {
	ids := s.db.PartitionIDs(q.Table)
	partials := make([]*exec.PartialResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)

	for i, id := range ids {
		i, id := i, id

		if err := s.pool.Acquire(gctx, 1); err != nil {
			_ = g.Wait()

			return nil, err
		}

		g.Go(func() error {
			defer s.pool.Release(1)

			partial, err := s.runPartition(gctx, q, id)
			if err != nil {
				return err
			}
			partials[i] = partial

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return exec.Merge(q, partials)
}

func (s *Scheduler) runPartition(ctx context.Context, q *query.Query, partitionID uint64) (*exec.PartialResult, error) {
	match := query.MayMatchPartition(q.Where, func(name string) (column.Range, bool) {
		return s.db.ColumnRange(partitionID, name)
	})
	if !match {
		return &exec.PartialResult{}, nil
	}

	n, err := s.db.PartitionLen(partitionID)
	if err != nil {
		return nil, err
	}

	refs := q.ReferencedColumns()
	cols := make(map[string]column.Buffer, len(refs))
	for _, name := range refs {
		buf, err := s.db.FetchColumn(partitionID, name)
		if err != nil {
			return nil, err
		}
		cols[name] = buf
	}

	return exec.Execute(ctx, q, cols, n)
}
