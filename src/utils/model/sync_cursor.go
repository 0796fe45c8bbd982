package model

import "time"

const TableSyncCursor = "sync_cursors"

// One row per tracked event type. The block stored here is only advanced
// after every matching event in it has been durably applied.
type SyncCursor struct {
	EventName          string `gorm:"primaryKey"`
	LastProcessedBlock int64
	LastProcessedAt    time.Time
}

func (SyncCursor) TableName() string {
	return TableSyncCursor
}
