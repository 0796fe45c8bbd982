package relay

import (
	"context"
	"time"

	"github.com/finvo/bridge/src/utils/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Nonce bookkeeping for meta-transactions. The advance is a
// compare-and-increment, that's the only serialization point between
// concurrent relays from the same sender.
type NonceStore struct {
	db *gorm.DB
}

func NewNonceStore(db *gorm.DB) *NonceStore {
	return &NonceStore{db: db}
}

// Reads the current stored nonce, creating the row at 0 on first use
func (self *NonceStore) GetNonce(ctx context.Context, address string) (nonce int64, err error) {
	row := &model.MetaTxNonce{Address: address}
	err = self.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		FirstOrCreate(row).
		Error
	if err != nil {
		return
	}
	return row.Nonce, nil
}

// Atomically moves expected -> expected+1. When two requests race on the
// same nonce exactly one sees advanced=true.
func (self *NonceStore) AdvanceNonce(ctx context.Context, address string, expected int64) (advanced bool, err error) {
	res := self.db.WithContext(ctx).
		Model(&model.MetaTxNonce{}).
		Where("address = ? AND nonce = ?", address, expected).
		Updates(map[string]interface{}{
			"nonce":      gorm.Expr("nonce + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
