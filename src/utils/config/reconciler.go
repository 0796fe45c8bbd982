package config

import (
	"time"

	"github.com/spf13/viper"
)

type Reconciler struct {
	// How often a reconciliation cycle runs
	Interval time.Duration

	// Max number of records reconciled in one cycle
	BatchSize int

	// Number of concurrent ledger reads within a chunk
	Concurrency int

	// Max number of records waiting in the worker queue
	WorkerQueueSize int

	// How long a single cycle may hold a database query
	Timeout time.Duration
}

func setReconcilerDefaults() {
	viper.SetDefault("Reconciler.Interval", "1m")
	viper.SetDefault("Reconciler.BatchSize", 200)
	viper.SetDefault("Reconciler.Concurrency", 10)
	viper.SetDefault("Reconciler.WorkerQueueSize", 100)
	viper.SetDefault("Reconciler.Timeout", "90s")
}
