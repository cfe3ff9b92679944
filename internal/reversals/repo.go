package reversals

import (
	"context"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Candidate pairs a rewarded milestone with the current state of its earner.
type Candidate struct {
	Milestone        models.ReferralMilestone
	EarnerStatus     enums.EarnerStatus
	EarnerGrossCents int64
}

// Repository loads reversal candidates and the abuse flags weighed against them.
type Repository interface {
	FindCandidates(ctx context.Context, rewardedBefore time.Time) ([]Candidate, error)
	OpenBlockingFlags(ctx context.Context, earnerID uuid.UUID) ([]models.AbuseFlag, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reversal candidate repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindCandidates(ctx context.Context, rewardedBefore time.Time) ([]Candidate, error) {
	var milestones []models.ReferralMilestone
	err := r.db.WithContext(ctx).
		Where("status = ? AND rewarded_at <= ?", enums.MilestoneStatusRewarded, rewardedBefore).
		Order("rewarded_at ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return nil, nil
	}

	earnerIDs := make([]uuid.UUID, 0, len(milestones))
	for _, m := range milestones {
		earnerIDs = append(earnerIDs, m.EarnerID)
	}
	var earners []models.Earner
	if err := r.db.WithContext(ctx).
		Where("id IN ?", earnerIDs).
		Find(&earners).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Earner, len(earners))
	for _, e := range earners {
		byID[e.ID] = e
	}

	candidates := make([]Candidate, 0, len(milestones))
	for _, m := range milestones {
		earner := byID[m.EarnerID]
		candidates = append(candidates, Candidate{
			Milestone:        m,
			EarnerStatus:     earner.Status,
			EarnerGrossCents: earner.LifetimeGrossTipsCents,
		})
	}
	return candidates, nil
}

func (r *repository) OpenBlockingFlags(ctx context.Context, earnerID uuid.UUID) ([]models.AbuseFlag, error) {
	var flags []models.AbuseFlag
	err := r.db.WithContext(ctx).
		Where("earner_id = ?", earnerID).
		Where("status IN ?", []enums.AbuseFlagStatus{enums.AbuseFlagStatusActive, enums.AbuseFlagStatusPending}).
		Where("severity IN ?", []enums.AbuseFlagSeverity{enums.AbuseFlagSeverityHigh, enums.AbuseFlagSeverityCritical}).
		Order("created_at ASC").
		Find(&flags).Error
	if err != nil {
		return nil, err
	}
	return flags, nil
}
