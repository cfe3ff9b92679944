package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// ReferralRelationship links a referrer to an earner they recruited.
// MilestoneReachedAt is stamped once, when the earner first crosses the
// reward threshold.
type ReferralRelationship struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReferrerID         uuid.UUID            `gorm:"column:referrer_id;type:uuid;not null;index"`
	EarnerID           uuid.UUID            `gorm:"column:earner_id;type:uuid;not null;index"`
	Status             enums.ReferralStatus `gorm:"column:status;type:referral_status;not null;default:'pending'"`
	MilestoneReachedAt *time.Time           `gorm:"column:milestone_reached_at"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
