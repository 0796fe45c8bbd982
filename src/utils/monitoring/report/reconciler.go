package report

import "go.uber.org/atomic"

type ReconcilerErrors struct {
	PollFailures       atomic.Uint64 `json:"poll_failures"`
	LedgerReadFailures atomic.Uint64 `json:"ledger_read_failures"`
	StoreWriteFailures atomic.Uint64 `json:"store_write_failures"`
}

type ReconcilerState struct {
	CyclesRun             atomic.Uint64 `json:"cycles_run"`
	RecordsChecked        atomic.Uint64 `json:"records_checked"`
	RecordsSkippedMissing atomic.Uint64 `json:"records_skipped_missing"`
	StatusWrites          atomic.Uint64 `json:"status_writes"`
}

type ReconcilerReport struct {
	State  ReconcilerState  `json:"state"`
	Errors ReconcilerErrors `json:"errors"`
}
