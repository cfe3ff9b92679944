package milestones

import (
	"context"

	"github.com/aldomartell/tipply-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Candidate is a referral relationship whose earner has crossed the reward
// threshold and which has never been rewarded.
type Candidate struct {
	ReferralID       uuid.UUID `gorm:"column:referral_id"`
	ReferrerID       uuid.UUID `gorm:"column:referrer_id"`
	EarnerID         uuid.UUID `gorm:"column:earner_id"`
	EarnerGrossCents int64     `gorm:"column:earner_gross_cents"`
}

// Repository loads milestone evaluation candidates.
type Repository interface {
	FindCandidates(ctx context.Context, thresholdCents int64) ([]Candidate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a milestone candidate repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindCandidates applies every eligibility guard in one query: relationship
// still open, milestone timestamp never stamped, no milestone row, threshold
// crossed.
func (r *repository) FindCandidates(ctx context.Context, thresholdCents int64) ([]Candidate, error) {
	var candidates []Candidate
	err := r.db.WithContext(ctx).
		Table("referral_relationships AS rr").
		Select("rr.id AS referral_id, rr.referrer_id, rr.earner_id, e.lifetime_gross_tips_cents AS earner_gross_cents").
		Joins("JOIN earners e ON e.id = rr.earner_id").
		Where("rr.status IN ?", []enums.ReferralStatus{enums.ReferralStatusPending, enums.ReferralStatusActive}).
		Where("rr.milestone_reached_at IS NULL").
		Where("e.lifetime_gross_tips_cents >= ?", thresholdCents).
		Where("NOT EXISTS (SELECT 1 FROM referral_milestones m WHERE m.referral_id = rr.id)").
		Order("rr.created_at ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}
