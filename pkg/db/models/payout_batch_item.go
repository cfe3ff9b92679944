package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// PayoutBatchItem is one line of a payout batch. FEE_DEDUCTION rows are
// inserted unattached (nil BatchID) when a replacement fee is charged and
// claimed by the next generated batch exactly once.
type PayoutBatchItem struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BatchID     *uuid.UUID             `gorm:"column:batch_id;type:uuid;index"`
	EarnerID    uuid.UUID              `gorm:"column:earner_id;type:uuid;not null;index"`
	ItemType    enums.PayoutItemType   `gorm:"column:item_type;type:payout_item_type;not null"`
	AmountCents int64                  `gorm:"column:amount_cents;not null"`
	FeeCents    int64                  `gorm:"column:fee_cents;not null;default:0"`
	NetCents    int64                  `gorm:"column:net_cents;not null"`
	Status      enums.PayoutItemStatus `gorm:"column:status;type:payout_item_status;not null;default:'pending'"`
	Description *string                `gorm:"column:description"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
