package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// PayoutBatch aggregates one reporting week of earner payouts. The partial
// unique index on the period bounds is the storage-level guard against two
// concurrent generations succeeding for the same week.
type PayoutBatch struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchNumber      string                  `gorm:"column:batch_number;not null;unique"`
	PeriodStart      time.Time               `gorm:"column:period_start;not null;uniqueIndex:idx_payout_batches_period,where:status <> 'failed'"`
	PeriodEnd        time.Time               `gorm:"column:period_end;not null;uniqueIndex:idx_payout_batches_period,where:status <> 'failed'"`
	Status           enums.PayoutBatchStatus `gorm:"column:status;type:payout_batch_status;not null;default:'generating'"`
	EarnerCount      int                     `gorm:"column:earner_count;not null;default:0"`
	TotalAmountCents int64                   `gorm:"column:total_amount_cents;not null;default:0"`
	TotalFeesCents   int64                   `gorm:"column:total_fees_cents;not null;default:0"`
	TotalNetCents    int64                   `gorm:"column:total_net_cents;not null;default:0"`
	FailureReason    *string                 `gorm:"column:failure_reason"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
