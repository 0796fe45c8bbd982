package report

import "go.uber.org/atomic"

type IngestorErrors struct {
	ReplayFailures              atomic.Uint64 `json:"replay_failures"`
	SubscriptionFailures        atomic.Uint64 `json:"subscription_failures"`
	ApplyFailures               atomic.Uint64 `json:"apply_failures"`
	DispatcherPermanentFailures atomic.Uint64 `json:"dispatcher_permanent_failures"`
	NotifierFailures            atomic.Uint64 `json:"notifier_failures"`
}

type IngestorState struct {
	LastProcessedBlock     atomic.Int64  `json:"last_processed_block"`
	PendingReplayBlocks    atomic.Int64  `json:"pending_replay_blocks"`
	EventsApplied          atomic.Uint64 `json:"events_applied"`
	EventsSkippedDuplicate atomic.Uint64 `json:"events_skipped_duplicate"`
	LiveEventsReceived     atomic.Uint64 `json:"live_events_received"`
	DispatcherDeliveries   atomic.Uint64 `json:"dispatcher_deliveries"`
	NotificationsPublished atomic.Uint64 `json:"notifications_published"`
}

type IngestorReport struct {
	State  IngestorState  `json:"state"`
	Errors IngestorErrors `json:"errors"`
}
