package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// ReferralMilestone records a one-time threshold crossing for a referral
// relationship. The unique index on referral_id enforces at most one
// milestone per relationship at the storage layer.
type ReferralMilestone struct {
	ID                     uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReferralID             uuid.UUID             `gorm:"column:referral_id;type:uuid;not null;uniqueIndex"`
	ReferrerID             uuid.UUID             `gorm:"column:referrer_id;type:uuid;not null;index"`
	EarnerID               uuid.UUID             `gorm:"column:earner_id;type:uuid;not null;index"`
	RewardCents            int64                 `gorm:"column:reward_cents;not null"`
	GrossTipsSnapshotCents int64                 `gorm:"column:gross_tips_snapshot_cents;not null"`
	Status                 enums.MilestoneStatus `gorm:"column:status;type:milestone_status;not null;default:'rewarded'"`
	RewardedAt             time.Time             `gorm:"column:rewarded_at;not null"`
	ReversedAt             *time.Time            `gorm:"column:reversed_at"`
	ReversalReason         *string               `gorm:"column:reversal_reason"`
	CreatedAt              time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
