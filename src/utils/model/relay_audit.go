package model

import (
	"time"

	"github.com/jackc/pgtype"
)

const TableRelayAudit = "relay_audit_log"

type RelayOutcome string

const (
	RelayOutcomeSuccess  RelayOutcome = "SUCCESS"
	RelayOutcomeRejected RelayOutcome = "REJECTED"
	RelayOutcomeFailed   RelayOutcome = "FAILED"
)

// Append-only forensic log of relay requests. Written for every request,
// including the ones that never reach the ledger.
type RelayAuditEntry struct {
	Id             string `gorm:"primaryKey"`
	Sender         string
	CallData       pgtype.JSONB `gorm:"type:jsonb"`
	TxHash         *string
	Outcome        RelayOutcome
	RelayerAddress string
	GasUsed        *uint64
	ErrorMessage   *string
	CreatedAt      time.Time
}

func (RelayAuditEntry) TableName() string {
	return TableRelayAudit
}
