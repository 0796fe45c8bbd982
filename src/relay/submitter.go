package relay

import (
	"context"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/logger"
	"github.com/finvo/bridge/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// Ledger operations needed for submission, implemented by eth.Client
type LedgerSubmitter interface {
	ExecuteMetaTransaction(ctx context.Context, from common.Address, functionData, signature []byte) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Submits validated calls through the relayer account. Only transient
// conditions are retried, a reverted execution fails immediately.
type Submitter struct {
	log *logrus.Entry

	relayerConfig *config.Relayer
	client        LedgerSubmitter
}

func NewSubmitter(config *config.Config) (self *Submitter) {
	self = new(Submitter)
	self.log = logger.NewSublogger("submitter")
	self.relayerConfig = &config.Relayer
	return
}

func (self *Submitter) WithClient(v LedgerSubmitter) *Submitter {
	self.client = v
	return self
}

// Blocks until the transaction is mined or the retry budget is spent.
// No cancellation once a transaction has been broadcast.
func (self *Submitter) Submit(ctx context.Context, call *Call) (txHash string, gasUsed uint64, err error) {
	maxRetries := self.relayerConfig.MaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}

	err = task.NewRetry().
		WithContext(ctx).
		WithInitialInterval(self.relayerConfig.BackoffInitialInterval).
		WithMaxRetries(uint64(maxRetries)).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if !eth.IsTransient(err) {
				return backoff.Permanent(err)
			}
			self.log.WithError(err).
				WithField("from", call.From).
				Warn("Transient submission failure, retrying")
			return err
		}).
		Run(func() (err error) {
			tx, err := self.client.ExecuteMetaTransaction(ctx, call.From, call.Data, call.Signature)
			if err != nil {
				return
			}

			receipt, err := self.client.WaitMined(ctx, tx)
			if err != nil {
				return
			}

			txHash = tx.Hash().Hex()
			gasUsed = receipt.GasUsed
			return
		})
	return
}
