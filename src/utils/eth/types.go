package eth

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Name of the tracked contract event, also used as the sync cursor key
const EventInvoiceTokenized = "InvoiceTokenized"

// Decoded InvoiceTokenized event
type TokenizedEvent struct {
	InvoiceHash common.Hash
	TokenId     *big.Int
	Seller      common.Address
	Amount      *big.Int
	BlockNumber uint64
	TxHash      common.Hash
}

// On-chain escrow structure as returned by getEscrow
type EscrowData struct {
	Seller          common.Address
	Buyer           common.Address
	ExpiresAt       uint64
	BuyerConfirmed  bool
	SellerConfirmed bool
	DisputeRaised   bool
}

// The contract returns an all-zero struct for unknown invoices,
// an empty seller field is the sentinel for "not created yet"
func (self *EscrowData) Exists() bool {
	return self.Seller != (common.Address{})
}
