package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// Authoritative escrow reads, implemented by eth.Client
type EscrowReader interface {
	GetEscrow(ctx context.Context, invoiceHash common.Hash) (*eth.EscrowData, error)
}

// Re-derives the stored escrow status from ledger state. Chunks run
// sequentially, records within a chunk concurrently, so at most
// Concurrency ledger reads are in flight at once.
type Reconciler struct {
	*task.Task

	db      *gorm.DB
	reader  EscrowReader
	monitor monitoring.Monitor

	input chan []*model.Invoice
}

func NewReconciler(config *config.Config) (self *Reconciler) {
	self = new(Reconciler)

	self.Task = task.NewTask(config, "reconciler").
		WithSubtaskFunc(self.run).
		WithWorkerPool(config.Reconciler.Concurrency, config.Reconciler.WorkerQueueSize)

	return
}

func (self *Reconciler) WithDB(v *gorm.DB) *Reconciler {
	self.db = v
	return self
}

func (self *Reconciler) WithReader(v EscrowReader) *Reconciler {
	self.reader = v
	return self
}

func (self *Reconciler) WithMonitor(v monitoring.Monitor) *Reconciler {
	self.monitor = v
	return self
}

func (self *Reconciler) WithInputChannel(v chan []*model.Invoice) *Reconciler {
	self.input = v
	return self
}

func (self *Reconciler) run() (err error) {
	for invoices := range self.input {
		for _, chunk := range chunks(invoices, self.Config.Reconciler.Concurrency) {
			self.reconcileChunk(chunk)

			if self.IsStopping.Load() {
				break
			}
		}
	}
	return nil
}

func (self *Reconciler) reconcileChunk(invoices []*model.Invoice) {
	var wg sync.WaitGroup
	wg.Add(len(invoices))

	for _, invoice := range invoices {
		invoice := invoice
		self.SubmitToWorker(func() {
			defer wg.Done()
			self.reconcile(invoice)
		})
	}

	wg.Wait()
}

// Per-record failures are logged and counted, the record is retried on
// the next interval
func (self *Reconciler) reconcile(invoice *model.Invoice) {
	self.monitor.GetReport().Reconciler.State.RecordsChecked.Inc()

	escrow, err := self.reader.GetEscrow(self.Ctx, common.HexToHash(invoice.InvoiceHash))
	if err != nil {
		self.monitor.GetReport().Reconciler.Errors.LedgerReadFailures.Inc()
		self.Log.WithError(err).
			WithField("invoice_hash", invoice.InvoiceHash).
			Error("Failed to read escrow from the ledger")
		return
	}

	if !escrow.Exists() {
		self.monitor.GetReport().Reconciler.State.RecordsSkippedMissing.Inc()
		return
	}

	derived := DeriveEscrowStatus(escrow, time.Now())
	if derived == invoice.EscrowStatus {
		return
	}

	err = self.db.WithContext(self.Ctx).
		Model(&model.Invoice{}).
		Where("invoice_hash = ?", invoice.InvoiceHash).
		Update("escrow_status", derived).
		Error
	if err != nil {
		self.monitor.GetReport().Reconciler.Errors.StoreWriteFailures.Inc()
		self.Log.WithError(err).
			WithField("invoice_hash", invoice.InvoiceHash).
			Error("Failed to write derived escrow status")
		return
	}

	self.monitor.GetReport().Reconciler.State.StatusWrites.Inc()
	self.Log.WithField("invoice_hash", invoice.InvoiceHash).
		WithField("from", invoice.EscrowStatus).
		WithField("to", derived).
		Info("Escrow status reconciled")
}

func chunks(invoices []*model.Invoice, size int) (out [][]*model.Invoice) {
	if size <= 0 {
		size = 1
	}
	for size < len(invoices) {
		invoices, out = invoices[size:], append(out, invoices[:size])
	}
	return append(out, invoices)
}
