package reconcile

import (
	"context"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"gorm.io/gorm"
)

// Periodically selects tokenized invoices whose escrow status may still
// change and hands them to the reconciler in bounded batches
type Poller struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor

	Output chan []*model.Invoice
}

func NewPoller(config *config.Config) (self *Poller) {
	self = new(Poller)

	self.Output = make(chan []*model.Invoice, 1)

	self.Task = task.NewTask(config, "poller").
		WithPeriodicSubtaskFunc(config.Reconciler.Interval, self.poll).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Poller) WithDB(v *gorm.DB) *Poller {
	self.db = v
	return self
}

func (self *Poller) WithMonitor(v monitoring.Monitor) *Poller {
	self.monitor = v
	return self
}

// A failed cycle never stops the schedule, the next interval retries
func (self *Poller) poll() error {
	if self.IsStopping.Load() {
		return nil
	}

	self.monitor.GetReport().Reconciler.State.CyclesRun.Inc()

	ctx, cancel := context.WithTimeout(self.Ctx, self.Config.Reconciler.Timeout)
	defer cancel()

	var invoices []*model.Invoice
	err := self.db.WithContext(ctx).
		Where("is_tokenized = ?", true).
		Where("escrow_status NOT IN ?", []model.EscrowStatus{
			model.EscrowStatusReleased,
			model.EscrowStatusDisputed,
			model.EscrowStatusCancelled,
		}).
		// Settled financing is final, its escrow projection is frozen
		Where("financing_status NOT IN ?", []model.FinancingStatus{
			model.FinancingStatusRepaid,
			model.FinancingStatusFailed,
		}).
		Order("updated_at ASC").
		Limit(self.Config.Reconciler.BatchSize).
		Find(&invoices).
		Error
	if err != nil {
		self.monitor.GetReport().Reconciler.Errors.PollFailures.Inc()
		self.Log.WithError(err).Error("Failed to select invoices for reconciliation")
		return nil
	}

	if len(invoices) == 0 {
		return nil
	}

	select {
	case self.Output <- invoices:
	case <-self.StopChannel:
	}

	return nil
}
