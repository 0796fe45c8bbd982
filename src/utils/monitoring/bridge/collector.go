package monitor_bridge

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	ReplayFailures              *prometheus.Desc
	SubscriptionFailures        *prometheus.Desc
	ApplyFailures               *prometheus.Desc
	DispatcherPermanentFailures *prometheus.Desc
	NotifierFailures            *prometheus.Desc
	PollFailures                *prometheus.Desc
	LedgerReadFailures          *prometheus.Desc
	StoreWriteFailures          *prometheus.Desc
	ValidationRejections        *prometheus.Desc
	RateLimited                 *prometheus.Desc
	NonceConflicts              *prometheus.Desc
	SubmissionFailures          *prometheus.Desc
	AuditFlushFailures          *prometheus.Desc

	// State
	LastProcessedBlock     *prometheus.Desc
	PendingReplayBlocks    *prometheus.Desc
	EventsApplied          *prometheus.Desc
	EventsSkippedDuplicate *prometheus.Desc
	LiveEventsReceived     *prometheus.Desc
	DispatcherDeliveries   *prometheus.Desc
	NotificationsPublished *prometheus.Desc
	CyclesRun              *prometheus.Desc
	RecordsChecked         *prometheus.Desc
	RecordsSkippedMissing  *prometheus.Desc
	StatusWrites           *prometheus.Desc
	RequestsReceived       *prometheus.Desc
	TransactionsRelayed    *prometheus.Desc
	GasUsedTotal           *prometheus.Desc
	AuditEntriesSaved      *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		ReplayFailures:              prometheus.NewDesc("ingestor_replay_failures", "", nil, nil),
		SubscriptionFailures:        prometheus.NewDesc("ingestor_subscription_failures", "", nil, nil),
		ApplyFailures:               prometheus.NewDesc("ingestor_apply_failures", "", nil, nil),
		DispatcherPermanentFailures: prometheus.NewDesc("ingestor_dispatcher_permanent_failures", "", nil, nil),
		NotifierFailures:            prometheus.NewDesc("ingestor_notifier_failures", "", nil, nil),
		PollFailures:                prometheus.NewDesc("reconciler_poll_failures", "", nil, nil),
		LedgerReadFailures:          prometheus.NewDesc("reconciler_ledger_read_failures", "", nil, nil),
		StoreWriteFailures:          prometheus.NewDesc("reconciler_store_write_failures", "", nil, nil),
		ValidationRejections:        prometheus.NewDesc("relayer_validation_rejections", "", nil, nil),
		RateLimited:                 prometheus.NewDesc("relayer_rate_limited", "", nil, nil),
		NonceConflicts:              prometheus.NewDesc("relayer_nonce_conflicts", "", nil, nil),
		SubmissionFailures:          prometheus.NewDesc("relayer_submission_failures", "", nil, nil),
		AuditFlushFailures:          prometheus.NewDesc("relayer_audit_flush_failures", "", nil, nil),

		// State
		LastProcessedBlock:     prometheus.NewDesc("ingestor_last_processed_block", "", nil, nil),
		PendingReplayBlocks:    prometheus.NewDesc("ingestor_pending_replay_blocks", "", nil, nil),
		EventsApplied:          prometheus.NewDesc("ingestor_events_applied", "", nil, nil),
		EventsSkippedDuplicate: prometheus.NewDesc("ingestor_events_skipped_duplicate", "", nil, nil),
		LiveEventsReceived:     prometheus.NewDesc("ingestor_live_events_received", "", nil, nil),
		DispatcherDeliveries:   prometheus.NewDesc("ingestor_dispatcher_deliveries", "", nil, nil),
		NotificationsPublished: prometheus.NewDesc("ingestor_notifications_published", "", nil, nil),
		CyclesRun:              prometheus.NewDesc("reconciler_cycles_run", "", nil, nil),
		RecordsChecked:         prometheus.NewDesc("reconciler_records_checked", "", nil, nil),
		RecordsSkippedMissing:  prometheus.NewDesc("reconciler_records_skipped_missing", "", nil, nil),
		StatusWrites:           prometheus.NewDesc("reconciler_status_writes", "", nil, nil),
		RequestsReceived:       prometheus.NewDesc("relayer_requests_received", "", nil, nil),
		TransactionsRelayed:    prometheus.NewDesc("relayer_transactions_relayed", "", nil, nil),
		GasUsedTotal:           prometheus.NewDesc("relayer_gas_used_total", "", nil, nil),
		AuditEntriesSaved:      prometheus.NewDesc("relayer_audit_entries_saved", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.ReplayFailures
	ch <- self.SubscriptionFailures
	ch <- self.ApplyFailures
	ch <- self.DispatcherPermanentFailures
	ch <- self.NotifierFailures
	ch <- self.PollFailures
	ch <- self.LedgerReadFailures
	ch <- self.StoreWriteFailures
	ch <- self.ValidationRejections
	ch <- self.RateLimited
	ch <- self.NonceConflicts
	ch <- self.SubmissionFailures
	ch <- self.AuditFlushFailures

	// State
	ch <- self.LastProcessedBlock
	ch <- self.PendingReplayBlocks
	ch <- self.EventsApplied
	ch <- self.EventsSkippedDuplicate
	ch <- self.LiveEventsReceived
	ch <- self.DispatcherDeliveries
	ch <- self.NotificationsPublished
	ch <- self.CyclesRun
	ch <- self.RecordsChecked
	ch <- self.RecordsSkippedMissing
	ch <- self.StatusWrites
	ch <- self.RequestsReceived
	ch <- self.TransactionsRelayed
	ch <- self.GasUsedTotal
	ch <- self.AuditEntriesSaved
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	// Run
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.ReplayFailures, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.Errors.ReplayFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.SubscriptionFailures, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.Errors.SubscriptionFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApplyFailures, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.Errors.ApplyFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.DispatcherPermanentFailures, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.Errors.DispatcherPermanentFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotifierFailures, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.Errors.NotifierFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.PollFailures, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.PollFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.LedgerReadFailures, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.LedgerReadFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.StoreWriteFailures, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.StoreWriteFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.ValidationRejections, prometheus.CounterValue, float64(self.monitor.Report.Relayer.Errors.ValidationRejections.Load()))
	ch <- prometheus.MustNewConstMetric(self.RateLimited, prometheus.CounterValue, float64(self.monitor.Report.Relayer.Errors.RateLimited.Load()))
	ch <- prometheus.MustNewConstMetric(self.NonceConflicts, prometheus.CounterValue, float64(self.monitor.Report.Relayer.Errors.NonceConflicts.Load()))
	ch <- prometheus.MustNewConstMetric(self.SubmissionFailures, prometheus.CounterValue, float64(self.monitor.Report.Relayer.Errors.SubmissionFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.AuditFlushFailures, prometheus.CounterValue, float64(self.monitor.Report.Relayer.Errors.AuditFlushFailures.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.LastProcessedBlock, prometheus.GaugeValue, float64(self.monitor.Report.Ingestor.State.LastProcessedBlock.Load()))
	ch <- prometheus.MustNewConstMetric(self.PendingReplayBlocks, prometheus.GaugeValue, float64(self.monitor.Report.Ingestor.State.PendingReplayBlocks.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsApplied, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.State.EventsApplied.Load()))
	ch <- prometheus.MustNewConstMetric(self.EventsSkippedDuplicate, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.State.EventsSkippedDuplicate.Load()))
	ch <- prometheus.MustNewConstMetric(self.LiveEventsReceived, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.State.LiveEventsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(self.DispatcherDeliveries, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.State.DispatcherDeliveries.Load()))
	ch <- prometheus.MustNewConstMetric(self.NotificationsPublished, prometheus.CounterValue, float64(self.monitor.Report.Ingestor.State.NotificationsPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.CyclesRun, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.CyclesRun.Load()))
	ch <- prometheus.MustNewConstMetric(self.RecordsChecked, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.RecordsChecked.Load()))
	ch <- prometheus.MustNewConstMetric(self.RecordsSkippedMissing, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.RecordsSkippedMissing.Load()))
	ch <- prometheus.MustNewConstMetric(self.StatusWrites, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.StatusWrites.Load()))
	ch <- prometheus.MustNewConstMetric(self.RequestsReceived, prometheus.CounterValue, float64(self.monitor.Report.Relayer.State.RequestsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsRelayed, prometheus.CounterValue, float64(self.monitor.Report.Relayer.State.TransactionsRelayed.Load()))
	ch <- prometheus.MustNewConstMetric(self.GasUsedTotal, prometheus.CounterValue, float64(self.monitor.Report.Relayer.State.GasUsedTotal.Load()))
	ch <- prometheus.MustNewConstMetric(self.AuditEntriesSaved, prometheus.CounterValue, float64(self.monitor.Report.Relayer.State.AuditEntriesSaved.Load()))
}
