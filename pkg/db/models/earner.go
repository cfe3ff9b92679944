package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// Earner is a tip recipient. Lifetime counters are maintained by the tip
// ingestion pipeline and read by the reward evaluators and batch generator.
type Earner struct {
	ID                     uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayName            string             `gorm:"column:display_name;not null"`
	Phone                  *string            `gorm:"column:phone"`
	Status                 enums.EarnerStatus `gorm:"column:status;type:earner_status;not null;default:'active'"`
	LifetimeGrossTipsCents int64              `gorm:"column:lifetime_gross_tips_cents;not null;default:0"`
	LifetimeNetTipsCents   int64              `gorm:"column:lifetime_net_tips_cents;not null;default:0"`
	LifetimePayoutsCents   int64              `gorm:"column:lifetime_payouts_cents;not null;default:0"`
	CreatedAt              time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// UnpaidBalanceCents is what the earner has accrued but not yet been paid.
func (e Earner) UnpaidBalanceCents() int64 {
	return e.LifetimeNetTipsCents - e.LifetimePayoutsCents
}
