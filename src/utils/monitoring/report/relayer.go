package report

import "go.uber.org/atomic"

type RelayerErrors struct {
	ValidationRejections atomic.Uint64 `json:"validation_rejections"`
	RateLimited          atomic.Uint64 `json:"rate_limited"`
	NonceConflicts       atomic.Uint64 `json:"nonce_conflicts"`
	SubmissionFailures   atomic.Uint64 `json:"submission_failures"`
	AuditFlushFailures   atomic.Uint64 `json:"audit_flush_failures"`
}

type RelayerState struct {
	RequestsReceived    atomic.Uint64 `json:"requests_received"`
	TransactionsRelayed atomic.Uint64 `json:"transactions_relayed"`
	GasUsedTotal        atomic.Uint64 `json:"gas_used_total"`
	AuditEntriesSaved   atomic.Uint64 `json:"audit_entries_saved"`
}

type RelayerReport struct {
	State  RelayerState  `json:"state"`
	Errors RelayerErrors `json:"errors"`
}
