package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldomartell/tipply-backend/pkg/enums"
)

// AbuseFlag marks suspected gaming of the tip or referral system by an
// earner. Open high/critical flags block referral rewards.
type AbuseFlag struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EarnerID  uuid.UUID               `gorm:"column:earner_id;type:uuid;not null;index"`
	FlagType  string                  `gorm:"column:flag_type;not null"`
	Severity  enums.AbuseFlagSeverity `gorm:"column:severity;type:abuse_flag_severity;not null"`
	Status    enums.AbuseFlagStatus   `gorm:"column:status;type:abuse_flag_status;not null;default:'pending'"`
	Notes     *string                 `gorm:"column:notes"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
