package reversals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aldomartell/tipply-backend/internal/ledger"
	"github.com/aldomartell/tipply-backend/internal/rewards"
	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/logger"
	"github.com/google/uuid"
)

type entryFinder interface {
	FindEarnedByMilestone(ctx context.Context, milestoneID uuid.UUID) (*models.LedgerEntry, error)
	FindReversalOf(ctx context.Context, earnedEntryID uuid.UUID) (*models.LedgerEntry, error)
}

type milestoneReverser interface {
	ReverseMilestone(ctx context.Context, input ledger.ReverseInput) (*ledger.ReverseResult, error)
}

// Service re-examines rewarded milestones inside the reversal window and
// claws back rewards whose conditions no longer hold.
type Service interface {
	Run(ctx context.Context) (*rewards.Summary, error)
}

// ServiceParams groups dependencies for the reversal evaluator.
type ServiceParams struct {
	Repo    Repository
	Entries entryFinder
	Ledger  milestoneReverser
	Rewards config.RewardsConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	entries entryFinder
	ledger  milestoneReverser
	cfg     config.RewardsConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the reversal evaluator.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("candidate repository required")
	}
	if params.Entries == nil {
		return nil, fmt.Errorf("ledger entry finder required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:    params.Repo,
		entries: params.Entries,
		ledger:  params.Ledger,
		cfg:     params.Rewards,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) Run(ctx context.Context) (*rewards.Summary, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.cfg.ReversalWindow())

	candidates, err := s.repo.FindCandidates(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "load reversal candidates")
	}

	summary := &rewards.Summary{Candidates: len(candidates)}
	for _, candidate := range candidates {
		if err := s.processCandidate(ctx, candidate, now, summary); err != nil {
			summary.AddError(fmt.Errorf("milestone %s: %w", candidate.Milestone.ID, err))
		}
	}
	return summary, nil
}

func (s *service) processCandidate(ctx context.Context, candidate Candidate, now time.Time, summary *rewards.Summary) error {
	milestone := candidate.Milestone

	earned, err := s.entries.FindEarnedByMilestone(ctx, milestone.ID)
	if err != nil {
		return fmt.Errorf("find earned entry: %w", err)
	}
	if earned == nil {
		// rewarded milestone without its ledger entry points at upstream
		// corruption; surface it without aborting the run
		return pkgerrors.New(pkgerrors.CodeNotFound, "earned ledger entry missing for rewarded milestone")
	}

	existing, err := s.entries.FindReversalOf(ctx, earned.ID)
	if err != nil {
		return fmt.Errorf("find prior reversal: %w", err)
	}
	if existing != nil {
		return nil
	}

	reason, err := s.reversalReason(ctx, candidate)
	if err != nil {
		return err
	}
	if reason == "" {
		return nil
	}

	result, err := s.ledger.ReverseMilestone(ctx, ledger.ReverseInput{
		MilestoneID:   milestone.ID,
		EarnedEntryID: earned.ID,
		Reason:        reason,
		Now:           now,
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			// reversed by a concurrent run between our check and the write
			return nil
		}
		return err
	}

	summary.Add(rewards.Record{
		ReferralID:        milestone.ReferralID,
		MilestoneID:       milestone.ID,
		ReferrerID:        milestone.ReferrerID,
		EarnerID:          milestone.EarnerID,
		AmountCents:       earned.AmountCents,
		BalanceAfterCents: result.BalanceAfterCents,
		Reason:            reason,
	})

	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"milestone_id": milestone.ID.String(),
			"reason":       reason,
		})
		s.logg.Info(lctx, "milestone reward reversed")
	}
	return nil
}

// reversalReason applies the condition precedence: abuse flags first, then
// earner activity, then tip retention.
func (s *service) reversalReason(ctx context.Context, candidate Candidate) (string, error) {
	milestone := candidate.Milestone

	if s.cfg.CheckAbuseFlags {
		flags, err := s.repo.OpenBlockingFlags(ctx, milestone.EarnerID)
		if err != nil {
			return "", fmt.Errorf("load abuse flags: %w", err)
		}
		if len(flags) > 0 {
			types := make([]string, 0, len(flags))
			seen := map[string]bool{}
			for _, flag := range flags {
				if !seen[flag.FlagType] {
					seen[flag.FlagType] = true
					types = append(types, flag.FlagType)
				}
			}
			return "abuse flags: " + strings.Join(types, ", "), nil
		}
	}

	if s.cfg.CheckActivity && candidate.EarnerStatus != enums.EarnerStatusActive {
		return fmt.Sprintf("earner status: %s", candidate.EarnerStatus), nil
	}

	if milestone.GrossTipsSnapshotCents > 0 {
		ratio := float64(candidate.EarnerGrossCents) / float64(milestone.GrossTipsSnapshotCents)
		threshold := s.cfg.Retention()
		if ratio < threshold {
			return fmt.Sprintf("retention %.1f%% below %.0f%% threshold", ratio*100, threshold*100), nil
		}
	}

	return "", nil
}
