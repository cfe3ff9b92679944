package milestones

import (
	"context"
	"errors"
	"testing"

	"github.com/aldomartell/tipply-backend/internal/ledger"
	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/db/models"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubRepo struct {
	candidates []Candidate
	err        error
	threshold  int64
}

func (s *stubRepo) FindCandidates(ctx context.Context, thresholdCents int64) ([]Candidate, error) {
	s.threshold = thresholdCents
	return s.candidates, s.err
}

type stubLedger struct {
	awards   []ledger.AwardInput
	awardErr map[uuid.UUID]error
}

func (s *stubLedger) AwardMilestone(ctx context.Context, input ledger.AwardInput) (*ledger.AwardResult, error) {
	s.awards = append(s.awards, input)
	if err, ok := s.awardErr[input.ReferralID]; ok {
		return nil, err
	}
	milestone := &models.ReferralMilestone{
		ID:                     uuid.New(),
		ReferralID:             input.ReferralID,
		ReferrerID:             input.ReferrerID,
		EarnerID:               input.EarnerID,
		RewardCents:            input.RewardCents,
		GrossTipsSnapshotCents: input.SnapshotGrossCents,
	}
	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		ReferrerID:  input.ReferrerID,
		MilestoneID: &milestone.ID,
		AmountCents: input.RewardCents,
	}
	return &ledger.AwardResult{
		Milestone:         milestone,
		Entry:             entry,
		BalanceAfterCents: input.RewardCents,
	}, nil
}

func (s *stubLedger) ReverseMilestone(ctx context.Context, input ledger.ReverseInput) (*ledger.ReverseResult, error) {
	return nil, errors.New("not used")
}

func TestRunIssuesRewardPerCandidate(t *testing.T) {
	repo := &stubRepo{candidates: []Candidate{
		{ReferralID: uuid.New(), ReferrerID: uuid.New(), EarnerID: uuid.New(), EarnerGrossCents: 51000},
		{ReferralID: uuid.New(), ReferrerID: uuid.New(), EarnerID: uuid.New(), EarnerGrossCents: 70000},
	}}
	ledgerStub := &stubLedger{}

	svc, err := NewService(ServiceParams{Repo: repo, Ledger: ledgerStub, Rewards: config.RewardsConfig{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Candidates != 2 || summary.Processed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.TotalAmountCents != 2*config.DefaultRewardCents {
		t.Fatalf("total = %d", summary.TotalAmountCents)
	}
	if repo.threshold != config.DefaultMilestoneThresholdCents {
		t.Fatalf("threshold = %d", repo.threshold)
	}
	for _, award := range ledgerStub.awards {
		if award.RewardCents != config.DefaultRewardCents {
			t.Fatalf("award reward = %d", award.RewardCents)
		}
	}
}

func TestRunSkipsConflictsSilently(t *testing.T) {
	conflicted := uuid.New()
	repo := &stubRepo{candidates: []Candidate{
		{ReferralID: conflicted, ReferrerID: uuid.New(), EarnerID: uuid.New(), EarnerGrossCents: 51000},
		{ReferralID: uuid.New(), ReferrerID: uuid.New(), EarnerID: uuid.New(), EarnerGrossCents: 60000},
	}}
	ledgerStub := &stubLedger{awardErr: map[uuid.UUID]error{
		conflicted: pkgerrors.New(pkgerrors.CodeConflict, "milestone already awarded for referral"),
	}}

	svc, _ := NewService(ServiceParams{Repo: repo, Ledger: ledgerStub, Rewards: config.RewardsConfig{}})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("processed = %d, want 1", summary.Processed)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("conflicts are not errors: %v", summary.Errors)
	}
}

func TestRunIsolatesCandidateFailures(t *testing.T) {
	failing := uuid.New()
	repo := &stubRepo{candidates: []Candidate{
		{ReferralID: failing, ReferrerID: uuid.New(), EarnerID: uuid.New(), EarnerGrossCents: 51000},
		{ReferralID: uuid.New(), ReferrerID: uuid.New(), EarnerID: uuid.New(), EarnerGrossCents: 60000},
	}}
	ledgerStub := &stubLedger{awardErr: map[uuid.UUID]error{
		failing: pkgerrors.New(pkgerrors.CodeProcessor, "tx aborted"),
	}}

	svc, _ := NewService(ServiceParams{Repo: repo, Ledger: ledgerStub, Rewards: config.RewardsConfig{}})
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run must not abort on candidate failure: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("processed = %d, want 1", summary.Processed)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("errors = %v, want 1", summary.Errors)
	}
}

func TestRunFailsWhenCandidatesUnreadable(t *testing.T) {
	repo := &stubRepo{err: errors.New("db gone")}
	svc, _ := NewService(ServiceParams{Repo: repo, Ledger: &stubLedger{}, Rewards: config.RewardsConfig{}})

	_, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error when candidate set cannot be read")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeProcessor {
		t.Fatalf("expected processor error, got %v", err)
	}
}

func TestRunUsesConfiguredCurrencyStrings(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := NewService(ServiceParams{
		Repo:   repo,
		Ledger: &stubLedger{},
		Rewards: config.RewardsConfig{
			MilestoneThreshold: "750.00", // major units
			RewardAmount:       "50000",  // already minor units
		},
	})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.threshold != 75000 {
		t.Fatalf("threshold = %d, want 75000", repo.threshold)
	}
}
