package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// LedgerEntry is an immutable, append-only reward ledger row. REVERSAL
// entries reference the EARNED entry they undo; the unique index on
// reverses_entry_id guarantees at most one reversal per earned entry.
type LedgerEntry struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReferrerID        uuid.UUID             `gorm:"column:referrer_id;type:uuid;not null;index"`
	MilestoneID       *uuid.UUID            `gorm:"column:milestone_id;type:uuid;index"`
	EntryType         enums.LedgerEntryType `gorm:"column:entry_type;type:ledger_entry_type;not null"`
	AmountCents       int64                 `gorm:"column:amount_cents;not null"`
	BalanceAfterCents int64                 `gorm:"column:balance_after_cents;not null"`
	ReversesEntryID   *uuid.UUID            `gorm:"column:reverses_entry_id;type:uuid;uniqueIndex"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
}
