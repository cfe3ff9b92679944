package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/db"
	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Store exposes the atomic ledger operations the evaluators depend on. Each
// operation appends entries and updates the referrer balance inside a single
// transaction; callers never read-modify-write a balance themselves.
type Store interface {
	AwardMilestone(ctx context.Context, input AwardInput) (*AwardResult, error)
	ReverseMilestone(ctx context.Context, input ReverseInput) (*ReverseResult, error)
}

// AwardInput carries everything needed to issue a one-time referral reward.
type AwardInput struct {
	ReferralID         uuid.UUID
	ReferrerID         uuid.UUID
	EarnerID           uuid.UUID
	SnapshotGrossCents int64
	RewardCents        int64
	Now                time.Time
}

// AwardResult reports the rows written by AwardMilestone.
type AwardResult struct {
	Milestone         *models.ReferralMilestone
	Entry             *models.LedgerEntry
	BalanceAfterCents int64
}

// ReverseInput identifies the milestone and EARNED entry being undone.
type ReverseInput struct {
	MilestoneID   uuid.UUID
	EarnedEntryID uuid.UUID
	Reason        string
	Now           time.Time
}

// ReverseResult reports the reversal entry and the post-reversal balance.
type ReverseResult struct {
	ReversalID        uuid.UUID
	BalanceAfterCents int64
}

type store struct {
	tx   txRunner
	repo Repository
}

// NewStore wires a ledger store with the provided transaction runner and repository.
func NewStore(tx txRunner, repo Repository) (Store, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &store{tx: tx, repo: repo}, nil
}

func (s *store) AwardMilestone(ctx context.Context, input AwardInput) (*AwardResult, error) {
	if input.ReferralID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referral id is required")
	}
	if input.ReferrerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referrer id is required")
	}
	if input.EarnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "earner id is required")
	}
	if input.RewardCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reward must be positive")
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var result AwardResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		milestone := &models.ReferralMilestone{
			ID:                     uuid.New(),
			ReferralID:             input.ReferralID,
			ReferrerID:             input.ReferrerID,
			EarnerID:               input.EarnerID,
			RewardCents:            input.RewardCents,
			GrossTipsSnapshotCents: input.SnapshotGrossCents,
			Status:                 enums.MilestoneStatusRewarded,
			RewardedAt:             now,
		}
		if err := repo.CreateMilestone(ctx, milestone); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "milestone already awarded for referral")
			}
			return fmt.Errorf("create milestone: %w", err)
		}

		if err := repo.StampRelationshipMilestone(ctx, input.ReferralID, now); err != nil {
			return fmt.Errorf("stamp relationship: %w", err)
		}

		balance, err := repo.GetBalance(ctx, input.ReferrerID)
		if err != nil {
			return fmt.Errorf("load balance: %w", err)
		}
		balance.BalanceCents += input.RewardCents
		balance.UpdatedAt = now

		entry := &models.LedgerEntry{
			ID:                uuid.New(),
			ReferrerID:        input.ReferrerID,
			MilestoneID:       &milestone.ID,
			EntryType:         enums.LedgerEntryTypeEarned,
			AmountCents:       input.RewardCents,
			BalanceAfterCents: balance.BalanceCents,
			CreatedAt:         now,
		}
		if err := repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("append earned entry: %w", err)
		}
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		result = AwardResult{
			Milestone:         milestone,
			Entry:             entry,
			BalanceAfterCents: balance.BalanceCents,
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "award milestone")
	}
	return &result, nil
}

func (s *store) ReverseMilestone(ctx context.Context, input ReverseInput) (*ReverseResult, error) {
	if input.MilestoneID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "milestone id is required")
	}
	if input.EarnedEntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "earned entry id is required")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reversal reason is required")
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var result ReverseResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		earned, err := repo.GetEntry(ctx, input.EarnedEntryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "earned ledger entry missing")
		}
		if earned.EntryType != enums.LedgerEntryTypeEarned {
			return pkgerrors.New(pkgerrors.CodeValidation, "entry is not an EARNED entry")
		}

		affected, err := repo.TransitionMilestone(ctx, input.MilestoneID, enums.MilestoneStatusRewarded, enums.MilestoneStatusReversed, input.Reason, now)
		if err != nil {
			return fmt.Errorf("transition milestone: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "milestone is not in rewarded state")
		}

		balance, err := repo.GetBalance(ctx, earned.ReferrerID)
		if err != nil {
			return fmt.Errorf("load balance: %w", err)
		}
		balance.BalanceCents -= earned.AmountCents
		if balance.BalanceCents < 0 {
			balance.BalanceCents = 0
		}
		balance.UpdatedAt = now

		reversal := &models.LedgerEntry{
			ID:                uuid.New(),
			ReferrerID:        earned.ReferrerID,
			MilestoneID:       earned.MilestoneID,
			EntryType:         enums.LedgerEntryTypeReversal,
			AmountCents:       earned.AmountCents,
			BalanceAfterCents: balance.BalanceCents,
			ReversesEntryID:   &earned.ID,
			CreatedAt:         now,
		}
		if err := repo.CreateEntry(ctx, reversal); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "earned entry already reversed")
			}
			return fmt.Errorf("append reversal entry: %w", err)
		}
		if err := repo.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		result = ReverseResult{
			ReversalID:        reversal.ID,
			BalanceAfterCents: balance.BalanceCents,
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, "reverse milestone")
	}
	return &result, nil
}
