// Package config defines the CLI surface named in spec.md §6 for the
// embedded REPL collaborator: this module only defines and validates the
// flag set, it does not implement a REPL.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/cswinter/locustdb/errs"
)

// Config holds the parsed command-line surface of spec.md §6.
type Config struct {
	Load             []string
	DBPath           string
	Table            string
	Threads          int
	PartitionSize    int
	ReadaheadMB      int
	MemLimitTablesGB int
	MemLZ4           bool
	SeqDiskRead      bool
	Trips            bool
	ReducedTrips     bool
	Help             bool
	Version          bool
}

// Default returns the documented defaults: threads = CPU count,
// partition-size = 65536, readahead = 256MB, mem-limit-tables = 8GB.
func Default() *Config {
	return &Config{
		Table:            "default",
		Threads:          runtime.NumCPU(),
		PartitionSize:    65536,
		ReadaheadMB:      256,
		MemLimitTablesGB: 8,
	}
}

// Parse builds a pflag.FlagSet over the recognized options and parses args
// (conventionally os.Args[1:]) into a fresh Config seeded with Default()'s
// values.
func Parse(args []string) (*Config, error) {
	c := Default()

	fs := pflag.NewFlagSet("locustdb", pflag.ContinueOnError)
	fs.StringArrayVar(&c.Load, "load", nil, "CSV/CSV.GZ files to load on startup")
	fs.StringVar(&c.DBPath, "db-path", "", "directory for persisted partitions and metadata")
	fs.StringVar(&c.Table, "table", c.Table, "default table name")
	fs.IntVar(&c.Threads, "threads", c.Threads, "worker pool size")
	fs.IntVar(&c.PartitionSize, "partition-size", c.PartitionSize, "rows per sealed partition")
	fs.IntVar(&c.ReadaheadMB, "readahead", c.ReadaheadMB, "disk readahead, in MB")
	fs.IntVar(&c.MemLimitTablesGB, "mem-limit-tables", c.MemLimitTablesGB, "decoded-table memory budget, in GB")
	fs.BoolVar(&c.MemLZ4, "mem-lz4", false, "LZ4-compress decoded buffers kept resident")
	fs.BoolVar(&c.SeqDiskRead, "seq-disk-read", false, "force sequential (non-readahead) disk reads")
	fs.BoolVar(&c.Trips, "trips", false, "load the built-in NYC trips benchmark dataset")
	fs.BoolVar(&c.ReducedTrips, "reduced-trips", false, "load a reduced NYC trips benchmark dataset")
	fs.BoolVarP(&c.Help, "help", "h", false, "print usage and exit")
	fs.BoolVarP(&c.Version, "version", "V", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, errs.Classify(errs.KindInvalidQuery, err)
	}

	if c.Help || c.Version {
		return c, nil
	}

	return c, c.Validate()
}

// Validate checks invariants Parse alone cannot enforce (mutually exclusive
// flags, positive-only bounds). A REPL collaborator should exit with code 2
// on a non-nil error, per spec.md §6's documented exit codes.
func (c *Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: --threads must be >= 1, got %d", errs.ErrInvalidConfig, c.Threads)
	}
	if c.PartitionSize < 1 {
		return fmt.Errorf("%w: --partition-size must be >= 1, got %d", errs.ErrInvalidConfig, c.PartitionSize)
	}
	if c.Trips && c.ReducedTrips {
		return fmt.Errorf("%w: --trips and --reduced-trips are mutually exclusive", errs.ErrInvalidConfig)
	}

	return nil
}
