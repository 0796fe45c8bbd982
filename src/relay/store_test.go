package relay

import (
	"context"
	"testing"

	"github.com/finvo/bridge/src/utils/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

func TestNonceStoreTestSuite(t *testing.T) {
	suite.Run(t, new(NonceStoreTestSuite))
}

type NonceStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	store *NonceStore
}

func (s *NonceStoreTestSuite) SetupTest() {
	s.ctx = context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	err = db.AutoMigrate(&model.MetaTxNonce{})
	s.Require().NoError(err)
	s.db = db

	s.store = NewNonceStore(db)
}

const testAddress = "0x1111111111111111111111111111111111111111"

func (s *NonceStoreTestSuite) TestFirstUseStartsAtZero() {
	nonce, err := s.store.GetNonce(s.ctx, testAddress)
	s.NoError(err)
	s.Equal(int64(0), nonce)
}

func (s *NonceStoreTestSuite) TestAdvanceRequiresExactMatch() {
	_, err := s.store.GetNonce(s.ctx, testAddress)
	s.Require().NoError(err)

	// Gap
	advanced, err := s.store.AdvanceNonce(s.ctx, testAddress, 5)
	s.NoError(err)
	s.False(advanced)

	advanced, err = s.store.AdvanceNonce(s.ctx, testAddress, 0)
	s.NoError(err)
	s.True(advanced)

	nonce, err := s.store.GetNonce(s.ctx, testAddress)
	s.NoError(err)
	s.Equal(int64(1), nonce)

	// Reuse
	advanced, err = s.store.AdvanceNonce(s.ctx, testAddress, 0)
	s.NoError(err)
	s.False(advanced)
}

// Two requests racing on the same nonce, exactly one wins
func (s *NonceStoreTestSuite) TestConcurrentAdvanceHasOneWinner() {
	_, err := s.store.GetNonce(s.ctx, testAddress)
	s.Require().NoError(err)

	first, err := s.store.AdvanceNonce(s.ctx, testAddress, 0)
	s.Require().NoError(err)
	second, err := s.store.AdvanceNonce(s.ctx, testAddress, 0)
	s.Require().NoError(err)

	s.True(first != second)

	nonce, err := s.store.GetNonce(s.ctx, testAddress)
	s.NoError(err)
	s.Equal(int64(1), nonce)
}

func (s *NonceStoreTestSuite) TestSendersAreIndependent() {
	other := "0x2222222222222222222222222222222222222222"

	_, err := s.store.GetNonce(s.ctx, testAddress)
	s.Require().NoError(err)
	_, err = s.store.GetNonce(s.ctx, other)
	s.Require().NoError(err)

	advanced, err := s.store.AdvanceNonce(s.ctx, testAddress, 0)
	s.NoError(err)
	s.True(advanced)

	nonce, err := s.store.GetNonce(s.ctx, other)
	s.NoError(err)
	s.Equal(int64(0), nonce)
}
