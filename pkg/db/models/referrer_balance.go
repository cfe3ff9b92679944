package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferrerBalance is the running reward balance for a referrer, updated in
// the same transaction as every ledger append.
type ReferrerBalance struct {
	ReferrerID   uuid.UUID `gorm:"column:referrer_id;type:uuid;primaryKey"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
