package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/finvo/bridge/src/utils/config"
	"github.com/finvo/bridge/src/utils/eth"
	"github.com/finvo/bridge/src/utils/model"
	monitor_bridge "github.com/finvo/bridge/src/utils/monitoring/bridge"

	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

type fakeReader struct {
	escrows map[common.Hash]*eth.EscrowData
	err     error
}

func (self *fakeReader) GetEscrow(ctx context.Context, invoiceHash common.Hash) (*eth.EscrowData, error) {
	if self.err != nil {
		return nil, self.err
	}
	escrow, ok := self.escrows[invoiceHash]
	if !ok {
		return &eth.EscrowData{}, nil
	}
	return escrow, nil
}

type ReconcilerTestSuite struct {
	suite.Suite
	config     *config.Config
	db         *gorm.DB
	monitor    *monitor_bridge.Monitor
	reader     *fakeReader
	reconciler *Reconciler
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.config = config.Default()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	err = db.AutoMigrate(&model.Invoice{})
	s.Require().NoError(err)
	s.db = db

	s.monitor = monitor_bridge.NewMonitor(s.config)
	s.reader = &fakeReader{escrows: map[common.Hash]*eth.EscrowData{}}

	s.reconciler = NewReconciler(s.config).
		WithDB(db).
		WithReader(s.reader).
		WithMonitor(s.monitor)
}

func (s *ReconcilerTestSuite) invoice(hash string, status model.EscrowStatus) *model.Invoice {
	invoice := &model.Invoice{
		InvoiceHash:  common.HexToHash(hash).Hex(),
		IsTokenized:  true,
		EscrowStatus: status,
	}
	err := s.db.Create(invoice).Error
	s.Require().NoError(err)
	return invoice
}

func (s *ReconcilerTestSuite) reload(hash string) model.EscrowStatus {
	var invoice model.Invoice
	err := s.db.First(&invoice, "invoice_hash = ?", common.HexToHash(hash).Hex()).Error
	s.Require().NoError(err)
	return invoice.EscrowStatus
}

func (s *ReconcilerTestSuite) TestWritesOnlyOnChange() {
	invoice := s.invoice("0x01", model.EscrowStatusPaymentPending)
	s.reader.escrows[common.HexToHash("0x01")] = &eth.EscrowData{
		Seller:         common.HexToAddress("0x1111111111111111111111111111111111111111"),
		BuyerConfirmed: true,
	}

	s.reconciler.reconcile(invoice)
	s.Equal(model.EscrowStatusLocked, s.reload("0x01"))
	s.Equal(uint64(1), s.monitor.Report.Reconciler.State.StatusWrites.Load())

	// Second run on unchanged ledger state is a no-op
	invoice.EscrowStatus = s.reload("0x01")
	s.reconciler.reconcile(invoice)
	s.Equal(uint64(1), s.monitor.Report.Reconciler.State.StatusWrites.Load())
}

func (s *ReconcilerTestSuite) TestSkipsMissingEscrow() {
	invoice := s.invoice("0x02", model.EscrowStatusPaymentPending)

	s.reconciler.reconcile(invoice)

	s.Equal(model.EscrowStatusPaymentPending, s.reload("0x02"))
	s.Equal(uint64(1), s.monitor.Report.Reconciler.State.RecordsSkippedMissing.Load())
	s.Equal(uint64(0), s.monitor.Report.Reconciler.State.StatusWrites.Load())
}

func (s *ReconcilerTestSuite) TestReadFailureIsIsolated() {
	invoice := s.invoice("0x03", model.EscrowStatusPaymentPending)
	s.reader.err = errors.New("rpc timeout")

	s.reconciler.reconcile(invoice)

	s.Equal(model.EscrowStatusPaymentPending, s.reload("0x03"))
	s.Equal(uint64(1), s.monitor.Report.Reconciler.Errors.LedgerReadFailures.Load())
}

func (s *ReconcilerTestSuite) TestChunks() {
	invoices := []*model.Invoice{{}, {}, {}, {}, {}}

	out := chunks(invoices, 2)
	s.Len(out, 3)
	s.Len(out[0], 2)
	s.Len(out[1], 2)
	s.Len(out[2], 1)

	out = chunks(invoices, 10)
	s.Len(out, 1)

	out = chunks(invoices, 0)
	s.Len(out, 5)
}
