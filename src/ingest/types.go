package ingest

import (
	"encoding/json"

	"github.com/finvo/bridge/src/utils/eth"
)

// Unit of work passed from the subscriber to the applier.
// A payload with a nil Event is a cursor marker, it tells the applier
// that every event up to Block has already been delivered.
type Payload struct {
	Event *eth.TokenizedEvent
	Block int64
}

// Best-effort notification published to Redis after a tokenization
// has been committed to the store
type TokenizedNotification struct {
	InvoiceHash string `json:"invoice_hash"`
	TokenId     string `json:"token_id"`
	Seller      string `json:"seller"`
	Amount      string `json:"amount"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
}

func (self *TokenizedNotification) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
