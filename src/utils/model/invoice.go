package model

import (
	"time"
)

const TableInvoice = "invoices"

type FinancingStatus string

const (
	FinancingStatusNone     FinancingStatus = "none"
	FinancingStatusListed   FinancingStatus = "listed"
	FinancingStatusFinanced FinancingStatus = "financed"
	FinancingStatusRepaid   FinancingStatus = "repaid"
	FinancingStatusFailed   FinancingStatus = "failed"
)

type EscrowStatus string

const (
	EscrowStatusCreated        EscrowStatus = "created"
	EscrowStatusPaymentPending EscrowStatus = "payment_pending"
	EscrowStatusLocked         EscrowStatus = "escrow_locked"
	EscrowStatusReleased       EscrowStatus = "released"
	EscrowStatusDisputed       EscrowStatus = "disputed"
	EscrowStatusCancelled      EscrowStatus = "cancelled"
)

// Statuses from which no further automatic transition occurs
func (s EscrowStatus) IsTerminal() bool {
	switch s {
	case EscrowStatusReleased, EscrowStatusDisputed, EscrowStatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	// Content identity, assigned off-chain before tokenization
	InvoiceHash string `gorm:"primaryKey" json:"invoice_hash"`

	// Assigned by the ledger at tokenization, set at most once
	TokenId *string `json:"token_id"`

	IsTokenized     bool            `json:"is_tokenized"`
	FinancingStatus FinancingStatus `json:"financing_status"`
	EscrowStatus    EscrowStatus    `json:"escrow_status"`

	SellerAddress string `json:"seller_address"`
	Amount        string `json:"amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invoice) TableName() string {
	return TableInvoice
}
