package milestones

import (
	"context"
	"fmt"
	"time"

	"github.com/aldomartell/tipply-backend/internal/ledger"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	"github.com/aldomartell/tipply-backend/pkg/config"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/logger"
)

// Service detects referral relationships that newly crossed the gross-tip
// threshold and issues their one-time reward.
type Service interface {
	Run(ctx context.Context) (*rewards.Summary, error)
}

// ServiceParams groups dependencies for the milestone evaluator.
type ServiceParams struct {
	Repo    Repository
	Ledger  ledger.Store
	Rewards config.RewardsConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo   Repository
	ledger ledger.Store
	cfg    config.RewardsConfig
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the milestone evaluator.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("candidate repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		ledger: params.Ledger,
		cfg:    params.Rewards,
		logg:   params.Logger,
		now:    now,
	}, nil
}

// Run is idempotent: relationships already rewarded are excluded by the
// candidate query on every subsequent run, and the unique milestone row
// backstops any race.
func (s *service) Run(ctx context.Context) (*rewards.Summary, error) {
	threshold := s.cfg.ThresholdCents()
	reward := s.cfg.RewardCents()
	now := s.now().UTC()

	candidates, err := s.repo.FindCandidates(ctx, threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "load milestone candidates")
	}

	summary := &rewards.Summary{Candidates: len(candidates)}
	for _, candidate := range candidates {
		result, err := s.ledger.AwardMilestone(ctx, ledger.AwardInput{
			ReferralID:         candidate.ReferralID,
			ReferrerID:         candidate.ReferrerID,
			EarnerID:           candidate.EarnerID,
			SnapshotGrossCents: candidate.EarnerGrossCents,
			RewardCents:        reward,
			Now:                now,
		})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				// awarded by a concurrent run; nothing to do
				continue
			}
			summary.AddError(fmt.Errorf("referral %s: %w", candidate.ReferralID, err))
			continue
		}

		summary.Add(rewards.Record{
			ReferralID:        candidate.ReferralID,
			MilestoneID:       result.Milestone.ID,
			ReferrerID:        candidate.ReferrerID,
			EarnerID:          candidate.EarnerID,
			AmountCents:       result.Entry.AmountCents,
			BalanceAfterCents: result.BalanceAfterCents,
		})

		if s.logg != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{
				"referral_id":  candidate.ReferralID.String(),
				"milestone_id": result.Milestone.ID.String(),
				"reward_cents": result.Entry.AmountCents,
			})
			s.logg.Info(lctx, "milestone reward issued")
		}
	}
	return summary, nil
}
