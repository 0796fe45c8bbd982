package ingest

import (
	"fmt"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/go-resty/resty/v2"
)

// Triggers the downstream financing pipeline for every applied
// tokenization. Strictly post-commit and best-effort, a delivery that
// exhausts its retry budget is logged and counted, never replayed.
type Dispatcher struct {
	*task.Task

	monitor monitoring.Monitor

	httpClient *resty.Client
	input      chan *eth.TokenizedEvent
}

type pipelineRequest struct {
	InvoiceHash string `json:"invoice_hash"`
	TokenId     string `json:"token_id"`
	Seller      string `json:"seller"`
	Amount      string `json:"amount"`
	TxHash      string `json:"tx_hash"`
}

func NewDispatcher(config *config.Config) (self *Dispatcher) {
	self = new(Dispatcher)

	self.httpClient = resty.New().
		SetTimeout(config.Ingestor.HttpRequestTimeout)

	self.Task = task.NewTask(config, "dispatcher").
		WithSubtaskFunc(self.run)

	return
}

func (self *Dispatcher) WithMonitor(v monitoring.Monitor) *Dispatcher {
	self.monitor = v
	return self
}

func (self *Dispatcher) WithInputChannel(v chan *eth.TokenizedEvent) *Dispatcher {
	self.input = v
	return self
}

func (self *Dispatcher) run() (err error) {
	for event := range self.input {
		err := self.dispatch(event)
		if err != nil {
			self.monitor.GetReport().Ingestor.Errors.DispatcherPermanentFailures.Inc()
			self.Log.WithError(err).
				WithField("invoice_hash", event.InvoiceHash).
				Error("Failed to notify financing pipeline, giving up")
			continue
		}
		self.monitor.GetReport().Ingestor.State.DispatcherDeliveries.Inc()
	}
	return nil
}

func (self *Dispatcher) dispatch(event *eth.TokenizedEvent) (err error) {
	body := &pipelineRequest{
		InvoiceHash: event.InvoiceHash.Hex(),
		TokenId:     event.TokenId.String(),
		Seller:      event.Seller.Hex(),
		Amount:      event.Amount.String(),
		TxHash:      event.TxHash.Hex(),
	}

	return task.NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.Config.Ingestor.DispatcherMaxElapsedTime).
		WithMaxInterval(self.Config.Ingestor.DispatcherBackoffInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			self.Log.WithError(err).Warn("Pipeline webhook failed, retrying")
			return err
		}).
		Run(func() (err error) {
			resp, err := self.httpClient.R().
				SetContext(self.Ctx).
				SetBody(body).
				Post(self.Config.Ingestor.PipelineUrl)
			if err != nil {
				return
			}
			if resp.IsError() {
				return fmt.Errorf("pipeline webhook returned %s", resp.Status())
			}
			return nil
		})
}
