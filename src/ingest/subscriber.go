package ingest

import (
	"context"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger reads the subscriber depends on, implemented by eth.Client
type EventSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterTokenized(ctx context.Context, fromBlock, toBlock int64) ([]*eth.TokenizedEvent, error)
	SubscribeTokenized(ctx context.Context, sink chan<- types.Log) (ethereum.Subscription, error)
	DecodeTokenized(lg types.Log) (*eth.TokenizedEvent, error)
}

// Produces InvoiceTokenized events, first from a bounded historical replay,
// then from a live websocket subscription. Everything goes through one
// channel so the applier stays the only writer of the sync cursor.
//
// A dropped subscription ends the task: resubscribing in place would skip
// every event mined during the outage, and the next live event would move
// the cursor past the gap for good. Process supervision restarts the
// engine, which re-enters the replay protocol and heals the gap.
type Subscriber struct {
	*task.Task

	db      *gorm.DB
	client  EventSource
	monitor monitoring.Monitor

	Output chan *Payload
}

func NewSubscriber(config *config.Config) (self *Subscriber) {
	self = new(Subscriber)

	self.Output = make(chan *Payload, config.Ingestor.ChannelSize)

	self.Task = task.NewTask(config, "subscriber").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Subscriber) WithDB(v *gorm.DB) *Subscriber {
	self.db = v
	return self
}

func (self *Subscriber) WithClient(v EventSource) *Subscriber {
	self.client = v
	return self
}

func (self *Subscriber) WithMonitor(v monitoring.Monitor) *Subscriber {
	self.monitor = v
	return self
}

// Replay window computation. The window starts right after the cursor and
// is capped at maxRange blocks so a single historical query never exceeds
// the provider's limits. from > to means there's nothing to replay.
func replayWindow(cursor, head, maxRange int64) (from, to int64, partial bool) {
	from = cursor + 1
	to = head
	if to-from+1 > maxRange {
		to = from + maxRange - 1
		partial = true
	}
	return
}

func (self *Subscriber) run() (err error) {
	err = self.replay()
	if err != nil {
		self.monitor.GetReport().Ingestor.Errors.ReplayFailures.Inc()
		self.Log.WithError(err).Error("Replay failed")
		return
	}

	return self.subscribe()
}

func (self *Subscriber) loadCursor() (cursor *model.SyncCursor, err error) {
	cursor = &model.SyncCursor{EventName: eth.EventInvoiceTokenized}
	err = self.db.WithContext(self.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		FirstOrCreate(cursor).
		Error
	return
}

func (self *Subscriber) replay() (err error) {
	cursor, err := self.loadCursor()
	if err != nil {
		return
	}

	var head uint64
	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxInterval(self.Config.Ingestor.StartupRetryMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.Log.WithError(err).Warn("Failed to get head block, retrying")
			return err
		}).
		Run(func() (err error) {
			head, err = self.client.BlockNumber(self.Ctx)
			return
		})
	if err != nil {
		return
	}

	from, to, partial := replayWindow(cursor.LastProcessedBlock, int64(head), self.Config.Ingestor.ReplayMaxRange)
	if partial {
		self.monitor.GetReport().Ingestor.State.PendingReplayBlocks.Store(int64(head) - to)
		self.Log.WithField("from", from).
			WithField("to", to).
			WithField("head", head).
			Warn("Partial replay, remaining blocks are picked up on the next start")
	}

	if from > to {
		self.Log.WithField("cursor", cursor.LastProcessedBlock).Debug("Cursor up to date, nothing to replay")
		return nil
	}

	var events []*eth.TokenizedEvent
	err = task.NewRetry().
		WithContext(self.Ctx).
		WithMaxInterval(self.Config.Ingestor.StartupRetryMaxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.Log.WithError(err).Warn("Historical log query failed, retrying")
			return err
		}).
		Run(func() (err error) {
			events, err = self.client.FilterTokenized(self.Ctx, from, to)
			return
		})
	if err != nil {
		return
	}

	self.Log.WithField("from", from).
		WithField("to", to).
		WithField("events", len(events)).
		Info("Replaying historical events")

	for _, event := range events {
		if !self.send(&Payload{Event: event, Block: int64(event.BlockNumber)}) {
			return nil
		}
	}

	// Marker that lets the applier advance the cursor through the
	// event-less tail of the window
	self.send(&Payload{Block: to})

	return nil
}

// Subscribes exactly once. Delivery failures are not retried here, the
// task ends and the restarted process replays the missed blocks.
func (self *Subscriber) subscribe() (err error) {
	sink := make(chan types.Log, self.Config.Ingestor.ChannelSize)

	sub, err := self.client.SubscribeTokenized(self.Ctx, sink)
	if err != nil {
		self.monitor.GetReport().Ingestor.Errors.SubscriptionFailures.Inc()
		self.Log.WithError(err).Error("Failed to open live subscription")
		return
	}
	defer sub.Unsubscribe()

	err = self.consume(sub, sink)
	if err != nil {
		self.monitor.GetReport().Ingestor.Errors.SubscriptionFailures.Inc()
		self.Log.WithError(err).Error("Live subscription dropped, a restart replays the gap")
	}
	return
}

func (self *Subscriber) consume(sub ethereum.Subscription, sink chan types.Log) (err error) {
	for {
		select {
		case <-self.StopChannel:
			return nil
		case err = <-sub.Err():
			return
		case lg := <-sink:
			event, err := self.client.DecodeTokenized(lg)
			if err != nil {
				self.Log.WithError(err).
					WithField("tx", lg.TxHash).
					Error("Failed to decode live event, skipping")
				continue
			}
			self.monitor.GetReport().Ingestor.State.LiveEventsReceived.Inc()
			if !self.send(&Payload{Event: event, Block: int64(event.BlockNumber)}) {
				return nil
			}
		}
	}
}

// Returns false when the task is stopping
func (self *Subscriber) send(payload *Payload) bool {
	select {
	case self.Output <- payload:
		return true
	case <-self.StopChannel:
		return false
	}
}
