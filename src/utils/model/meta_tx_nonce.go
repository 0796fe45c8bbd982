package model

import "time"

const TableMetaTxNonce = "meta_tx_nonces"

// One row per sender. The nonce increases by exactly 1 per successfully
// relayed transaction, advanced only through a compare-and-increment.
type MetaTxNonce struct {
	Address   string `gorm:"primaryKey"`
	Nonce     int64
	UpdatedAt time.Time
}

func (MetaTxNonce) TableName() string {
	return TableMetaTxNonce
}
