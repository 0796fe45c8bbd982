package ingest

import (
	"math/big"
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

func TestApplierTestSuite(t *testing.T) {
	suite.Run(t, new(ApplierTestSuite))
}

type ApplierTestSuite struct {
	suite.Suite
	config  *config.Config
	db      *gorm.DB
	applier *Applier
}

func (s *ApplierTestSuite) SetupTest() {
	s.config = config.Default()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	err = db.AutoMigrate(&model.Invoice{}, &model.SyncCursor{})
	s.Require().NoError(err)
	s.db = db

	err = db.Create(&model.SyncCursor{EventName: eth.EventInvoiceTokenized}).Error
	s.Require().NoError(err)

	s.applier = NewApplier(s.config).
		WithDB(db).
		WithMonitor(monitor_bridge.NewMonitor(s.config))
}

func (s *ApplierTestSuite) event(hash string, block uint64) *eth.TokenizedEvent {
	return &eth.TokenizedEvent{
		InvoiceHash: common.HexToHash(hash),
		TokenId:     big.NewInt(42),
		Seller:      common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Amount:      big.NewInt(1000),
		BlockNumber: block,
		TxHash:      common.HexToHash("0xbeef"),
	}
}

func (s *ApplierTestSuite) cursor() int64 {
	var cursor model.SyncCursor
	err := s.db.First(&cursor, "event_name = ?", eth.EventInvoiceTokenized).Error
	s.Require().NoError(err)
	return cursor.LastProcessedBlock
}

func (s *ApplierTestSuite) TestApplyExistingInvoice() {
	err := s.db.Create(&model.Invoice{
		InvoiceHash:     common.HexToHash("0x01").Hex(),
		FinancingStatus: model.FinancingStatusListed,
		EscrowStatus:    model.EscrowStatusCreated,
	}).Error
	s.Require().NoError(err)

	applied, err := s.applier.apply(s.event("0x01", 7))
	s.NoError(err)
	s.True(applied)

	var invoice model.Invoice
	err = s.db.First(&invoice, "invoice_hash = ?", common.HexToHash("0x01").Hex()).Error
	s.Require().NoError(err)
	s.Require().NotNil(invoice.TokenId)
	s.Equal("42", *invoice.TokenId)
	s.True(invoice.IsTokenized)
	s.Equal("1000", invoice.Amount)
	s.Equal(int64(7), s.cursor())
}

func (s *ApplierTestSuite) TestApplyCreatesMissingInvoice() {
	applied, err := s.applier.apply(s.event("0x02", 3))
	s.NoError(err)
	s.True(applied)

	var invoice model.Invoice
	err = s.db.First(&invoice, "invoice_hash = ?", common.HexToHash("0x02").Hex()).Error
	s.Require().NoError(err)
	s.True(invoice.IsTokenized)
	s.Equal(model.FinancingStatusNone, invoice.FinancingStatus)
}

func (s *ApplierTestSuite) TestApplyIsIdempotent() {
	event := s.event("0x03", 5)

	applied, err := s.applier.apply(event)
	s.NoError(err)
	s.True(applied)

	// Replay overlap delivers the same event again
	applied, err = s.applier.apply(event)
	s.NoError(err)
	s.False(applied)

	var invoices []model.Invoice
	err = s.db.Find(&invoices).Error
	s.Require().NoError(err)
	s.Len(invoices, 1)
	s.Equal("42", *invoices[0].TokenId)
}

func (s *ApplierTestSuite) TestCursorNeverDecreases() {
	_, err := s.applier.apply(s.event("0x04", 10))
	s.Require().NoError(err)
	s.Equal(int64(10), s.cursor())

	// An older event moves the store but not the cursor
	_, err = s.applier.apply(s.event("0x05", 8))
	s.Require().NoError(err)
	s.Equal(int64(10), s.cursor())
}

func (s *ApplierTestSuite) TestMarkerAdvancesCursor() {
	s.applier.advanceThroughMarker(25)
	s.Equal(int64(25), s.cursor())
}

func (s *ApplierTestSuite) TestMarkerSkippedAfterFailedApply() {
	s.applier.advanceThroughMarker(10)
	s.applier.applyFailed = true

	s.applier.advanceThroughMarker(30)
	s.Equal(int64(10), s.cursor())
}
