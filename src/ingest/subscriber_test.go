package ingest

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	monitor_bridge "github.com/finvo/bridge/src/utils/monitoring/bridge"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestReplayWindow(t *testing.T) {
	cases := []struct {
		name    string
		cursor  int64
		head    int64
		max     int64
		from    int64
		to      int64
		partial bool
	}{
		{name: "first run, short chain", cursor: 0, head: 5, max: 50, from: 1, to: 5},
		{name: "cursor at head", cursor: 100, head: 100, max: 50, from: 101, to: 100},
		{name: "cursor past head", cursor: 101, head: 100, max: 50, from: 102, to: 100},
		{name: "window exactly max", cursor: 0, head: 50, max: 50, from: 1, to: 50},
		{name: "window capped", cursor: 100, head: 115, max: 10, from: 101, to: 110, partial: true},
		{name: "single block", cursor: 9, head: 10, max: 50, from: 10, to: 10},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			from, to, partial := replayWindow(c.cursor, c.head, c.max)
			assert.Equal(t, c.from, from)
			assert.Equal(t, c.to, to)
			assert.Equal(t, c.partial, partial)

			// An empty window is never reported as partial
			if from > to {
				assert.False(t, partial)
			}
		})
	}
}

type fakeSubscription struct {
	errs chan error
}

func (self *fakeSubscription) Unsubscribe() {}

func (self *fakeSubscription) Err() <-chan error {
	return self.errs
}

type fakeSource struct {
	head   uint64
	events []*eth.TokenizedEvent

	sub            *fakeSubscription
	sink           chan<- types.Log
	subscribed     chan struct{}
	subscribeCalls int
}

func newFakeSource(head uint64, events ...*eth.TokenizedEvent) *fakeSource {
	return &fakeSource{
		head:       head,
		events:     events,
		sub:        &fakeSubscription{errs: make(chan error, 1)},
		subscribed: make(chan struct{}, 4),
	}
}

func (self *fakeSource) BlockNumber(ctx context.Context) (uint64, error) {
	return self.head, nil
}

func (self *fakeSource) FilterTokenized(ctx context.Context, fromBlock, toBlock int64) (events []*eth.TokenizedEvent, err error) {
	for _, event := range self.events {
		if int64(event.BlockNumber) >= fromBlock && int64(event.BlockNumber) <= toBlock {
			events = append(events, event)
		}
	}
	return
}

func (self *fakeSource) SubscribeTokenized(ctx context.Context, sink chan<- types.Log) (ethereum.Subscription, error) {
	self.subscribeCalls += 1
	self.sink = sink
	self.subscribed <- struct{}{}
	return self.sub, nil
}

func (self *fakeSource) DecodeTokenized(lg types.Log) (*eth.TokenizedEvent, error) {
	return &eth.TokenizedEvent{
		InvoiceHash: lg.Topics[0],
		TokenId:     big.NewInt(1),
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash,
	}, nil
}

func TestSubscriberTestSuite(t *testing.T) {
	suite.Run(t, new(SubscriberTestSuite))
}

type SubscriberTestSuite struct {
	suite.Suite
	config     *config.Config
	subscriber *Subscriber
}

func (s *SubscriberTestSuite) SetupTest() {
	s.config = config.Default()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	err = db.AutoMigrate(&model.SyncCursor{})
	s.Require().NoError(err)

	s.subscriber = NewSubscriber(s.config).
		WithDB(db).
		WithMonitor(monitor_bridge.NewMonitor(s.config))
}

func (s *SubscriberTestSuite) start(source *fakeSource) chan error {
	s.subscriber = s.subscriber.WithClient(source)
	done := make(chan error, 1)
	go func() {
		done <- s.subscriber.run()
	}()
	return done
}

func (s *SubscriberTestSuite) receive() *Payload {
	select {
	case payload := <-s.subscriber.Output:
		return payload
	case <-time.After(time.Second):
		s.Require().FailNow("expected a payload on the output channel")
		return nil
	}
}

func (s *SubscriberTestSuite) await(done chan error) error {
	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		s.Require().FailNow("subscriber did not finish")
		return nil
	}
}

func (s *SubscriberTestSuite) TestReplaysBeforeGoingLive() {
	source := newFakeSource(3,
		&eth.TokenizedEvent{InvoiceHash: common.HexToHash("0x01"), TokenId: big.NewInt(1), BlockNumber: 2},
		&eth.TokenizedEvent{InvoiceHash: common.HexToHash("0x02"), TokenId: big.NewInt(2), BlockNumber: 3},
	)
	done := s.start(source)

	s.Equal(int64(2), s.receive().Block)
	s.Equal(int64(3), s.receive().Block)

	// The window tail marker closes the replay
	marker := s.receive()
	s.Nil(marker.Event)
	s.Equal(int64(3), marker.Block)

	<-source.subscribed
	source.sink <- types.Log{
		BlockNumber: 7,
		Topics:      []common.Hash{common.HexToHash("0x03")},
	}
	live := s.receive()
	s.Require().NotNil(live.Event)
	s.Equal(int64(7), live.Block)

	source.sub.errs <- errors.New("connection reset by peer")
	s.Error(s.await(done))
}

func (s *SubscriberTestSuite) TestDroppedSubscriptionEndsRun() {
	source := newFakeSource(0)
	done := s.start(source)

	<-source.subscribed
	source.sub.errs <- errors.New("websocket closed")

	// The run ends with the subscription error instead of resubscribing,
	// leaving the gap to the replay of the next start
	err := s.await(done)
	s.Require().Error(err)
	s.Contains(err.Error(), "websocket closed")

	s.Equal(1, source.subscribeCalls)
	report := s.subscriber.monitor.GetReport()
	s.Equal(uint64(1), report.Ingestor.Errors.SubscriptionFailures.Load())
}

func (s *SubscriberTestSuite) TestStopEndsRunCleanly() {
	source := newFakeSource(0)
	done := s.start(source)

	<-source.subscribed
	close(s.subscriber.StopChannel)

	s.NoError(s.await(done))
	s.Equal(1, source.subscribeCalls)
}
