package relay

import (
	"encoding/json"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/model"
	"github.com/finvo/bridge/src/utils/monitoring"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Append-only audit trail of relay requests, batched into the store
// through a processor so a slow database never blocks request handling
// longer than the channel allows
type AuditWriter struct {
	*task.Processor[*model.RelayAuditEntry, *model.RelayAuditEntry]

	db      *gorm.DB
	monitor monitoring.Monitor

	relayerAddress string
	input          chan *model.RelayAuditEntry
}

func NewAuditWriter(config *config.Config) (self *AuditWriter) {
	self = new(AuditWriter)

	self.input = make(chan *model.RelayAuditEntry, config.Relayer.AuditBatchSize)

	self.Processor = task.NewProcessor[*model.RelayAuditEntry, *model.RelayAuditEntry](config, "audit-writer").
		WithBatchSize(config.Relayer.AuditBatchSize).
		WithInputChannel(self.input).
		WithOnProcess(self.process).
		WithOnFlush(config.Relayer.AuditFlushInterval, self.flush).
		WithBackoff(0, config.Relayer.AuditMaxBackoffInterval)

	return
}

func (self *AuditWriter) WithDB(v *gorm.DB) *AuditWriter {
	self.db = v
	return self
}

func (self *AuditWriter) WithMonitor(v monitoring.Monitor) *AuditWriter {
	self.monitor = v
	return self
}

func (self *AuditWriter) WithRelayerAddress(v string) *AuditWriter {
	self.relayerAddress = v
	return self
}

func (self *AuditWriter) Rejected(sender string, request *RelayRequest, message string) {
	self.save(sender, request, model.RelayOutcomeRejected, nil, nil, &message)
}

func (self *AuditWriter) Failed(sender string, request *RelayRequest, message string) {
	self.save(sender, request, model.RelayOutcomeFailed, nil, nil, &message)
}

func (self *AuditWriter) Success(sender string, request *RelayRequest, txHash string, gasUsed uint64) {
	self.save(sender, request, model.RelayOutcomeSuccess, &txHash, &gasUsed, nil)
}

func (self *AuditWriter) save(sender string, request *RelayRequest, outcome model.RelayOutcome, txHash *string, gasUsed *uint64, message *string) {
	entry := &model.RelayAuditEntry{
		Id:             xid.New().String(),
		Sender:         sender,
		Outcome:        outcome,
		TxHash:         txHash,
		GasUsed:        gasUsed,
		ErrorMessage:   message,
		RelayerAddress: self.relayerAddress,
	}

	callData, err := json.Marshal(request)
	if err == nil {
		err = entry.CallData.Set(callData)
	}
	if err != nil {
		self.Log.WithError(err).Error("Failed to encode audit call data")
		err = entry.CallData.Set(nil)
		if err != nil {
			return
		}
	}

	select {
	case self.input <- entry:
	case <-self.StopChannel:
	}
}

func (self *AuditWriter) process(entry *model.RelayAuditEntry) ([]*model.RelayAuditEntry, error) {
	return []*model.RelayAuditEntry{entry}, nil
}

func (self *AuditWriter) flush(entries []*model.RelayAuditEntry) ([]*model.RelayAuditEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	err := self.db.WithContext(self.Ctx).Create(&entries).Error
	if err != nil {
		self.monitor.GetReport().Relayer.Errors.AuditFlushFailures.Inc()
		self.Log.WithError(err).Error("Failed to flush audit entries")
		return nil, err
	}

	self.monitor.GetReport().Relayer.State.AuditEntriesSaved.Add(uint64(len(entries)))
	return nil, nil
}
