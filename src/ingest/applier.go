package ingest

import (
	"errors"
	"time"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"gorm.io/gorm"
)

// Sole consumer of the subscriber's channel and the only writer of the
// sync cursor. Applies each event in one store transaction, cursor advance
// included, so a crash can't commit one without the other.
type Applier struct {
	*task.Task

	db      *gorm.DB
	monitor monitoring.Monitor

	input chan *Payload

	// Applied events, handed to the pipeline dispatcher post-commit
	Output chan *eth.TokenizedEvent

	// Optional notification stream for the Redis publisher
	Notifications chan *TokenizedNotification

	// Set after the first failed apply, blocks marker-based cursor
	// advancement so a failed event's block is replayed on restart
	applyFailed bool
}

func NewApplier(config *config.Config) (self *Applier) {
	self = new(Applier)

	self.Output = make(chan *eth.TokenizedEvent, config.Ingestor.ChannelSize)

	self.Task = task.NewTask(config, "applier").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			close(self.Output)
			if self.Notifications != nil {
				close(self.Notifications)
			}
		})

	return
}

func (self *Applier) WithDB(v *gorm.DB) *Applier {
	self.db = v
	return self
}

func (self *Applier) WithMonitor(v monitoring.Monitor) *Applier {
	self.monitor = v
	return self
}

func (self *Applier) WithInputChannel(v chan *Payload) *Applier {
	self.input = v
	return self
}

func (self *Applier) WithNotifications(config *config.Config) *Applier {
	self.Notifications = make(chan *TokenizedNotification, config.Ingestor.ChannelSize)
	return self
}

func (self *Applier) run() (err error) {
	for payload := range self.input {
		if payload.Event == nil {
			self.advanceThroughMarker(payload.Block)
			continue
		}

		applied, err := self.apply(payload.Event)
		if err != nil {
			self.applyFailed = true
			self.monitor.GetReport().Ingestor.Errors.ApplyFailures.Inc()
			self.Log.WithError(err).
				WithField("invoice_hash", payload.Event.InvoiceHash).
				Error("Failed to apply event, block will be replayed on restart")
			continue
		}

		self.monitor.GetReport().Ingestor.State.LastProcessedBlock.Store(int64(payload.Event.BlockNumber))

		if !applied {
			self.monitor.GetReport().Ingestor.State.EventsSkippedDuplicate.Inc()
			continue
		}

		self.monitor.GetReport().Ingestor.State.EventsApplied.Inc()
		self.forward(payload.Event)
	}
	return nil
}

// One transaction per event. Reapplying an already tokenized invoice is a
// no-op, only the cursor moves.
func (self *Applier) apply(event *eth.TokenizedEvent) (applied bool, err error) {
	err = self.db.WithContext(self.Ctx).Transaction(func(tx *gorm.DB) (err error) {
		var invoice model.Invoice
		err = tx.Where("invoice_hash = ?", event.InvoiceHash.Hex()).
			First(&invoice).
			Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Tokenization can land before the off-chain record does
			invoice = model.Invoice{
				InvoiceHash:     event.InvoiceHash.Hex(),
				FinancingStatus: model.FinancingStatusNone,
				EscrowStatus:    model.EscrowStatusCreated,
			}
			err = tx.Create(&invoice).Error
			if err != nil {
				return
			}
		case err != nil:
			return
		}

		if invoice.TokenId != nil {
			// Already applied, just let the cursor advance
			return self.advanceCursor(tx, int64(event.BlockNumber))
		}

		tokenId := event.TokenId.String()
		err = tx.Model(&model.Invoice{}).
			Where("invoice_hash = ?", invoice.InvoiceHash).
			Updates(map[string]interface{}{
				"token_id":       tokenId,
				"is_tokenized":   true,
				"seller_address": event.Seller.Hex(),
				"amount":         event.Amount.String(),
			}).
			Error
		if err != nil {
			return
		}

		applied = true
		return self.advanceCursor(tx, int64(event.BlockNumber))
	})
	if err != nil {
		applied = false
	}
	return
}

// Monotone by construction, an older block never overwrites a newer one
func (self *Applier) advanceCursor(tx *gorm.DB, block int64) error {
	return tx.Model(&model.SyncCursor{}).
		Where("event_name = ? AND last_processed_block < ?", eth.EventInvoiceTokenized, block).
		Updates(map[string]interface{}{
			"last_processed_block": block,
			"last_processed_at":    time.Now(),
		}).
		Error
}

// Marker payloads close the gap over the event-less tail of a replay
// window. Skipped when any apply failed, the failed block has to be
// replayed on the next start.
func (self *Applier) advanceThroughMarker(block int64) {
	if self.applyFailed {
		self.Log.WithField("block", block).
			Warn("Skipping cursor marker after a failed apply")
		return
	}

	err := self.advanceCursor(self.db.WithContext(self.Ctx), block)
	if err != nil {
		self.monitor.GetReport().Ingestor.Errors.ApplyFailures.Inc()
		self.Log.WithError(err).Error("Failed to advance cursor")
		return
	}
	self.monitor.GetReport().Ingestor.State.LastProcessedBlock.Store(block)
}

// Post-commit fan-out, never blocks ingestion on a stopped consumer
func (self *Applier) forward(event *eth.TokenizedEvent) {
	select {
	case self.Output <- event:
	case <-self.StopChannel:
		return
	}

	if self.Notifications == nil {
		return
	}

	notification := &TokenizedNotification{
		InvoiceHash: event.InvoiceHash.Hex(),
		TokenId:     event.TokenId.String(),
		Seller:      event.Seller.Hex(),
		Amount:      event.Amount.String(),
		BlockNumber: event.BlockNumber,
		TxHash:      event.TxHash.Hex(),
	}

	select {
	case self.Notifications <- notification:
	case <-self.StopChannel:
	}
}
