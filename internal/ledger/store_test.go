package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
	"github.com/aldomartell/tipply-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	relationships := `
CREATE TABLE referral_relationships (
  id TEXT PRIMARY KEY,
  referrer_id TEXT NOT NULL,
  earner_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  milestone_reached_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	milestones := `
CREATE TABLE referral_milestones (
  id TEXT PRIMARY KEY,
  referral_id TEXT NOT NULL UNIQUE,
  referrer_id TEXT NOT NULL,
  earner_id TEXT NOT NULL,
  reward_cents INTEGER NOT NULL,
  gross_tips_snapshot_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'rewarded',
  rewarded_at DATETIME NOT NULL,
  reversed_at DATETIME,
  reversal_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE ledger_entries (
  id TEXT PRIMARY KEY,
  referrer_id TEXT NOT NULL,
  milestone_id TEXT,
  entry_type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  balance_after_cents INTEGER NOT NULL,
  reverses_entry_id TEXT UNIQUE,
  created_at DATETIME
);`
	balances := `
CREATE TABLE referrer_balances (
  referrer_id TEXT PRIMARY KEY,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(relationships).Error)
	require.NoError(t, db.Exec(milestones).Error)
	require.NoError(t, db.Exec(entries).Error)
	require.NoError(t, db.Exec(balances).Error)
	return db
}

func newRelationship(t *testing.T, db *gorm.DB, referrerID, earnerID uuid.UUID) *models.ReferralRelationship {
	t.Helper()
	rel := &models.ReferralRelationship{
		ID:         uuid.New(),
		ReferrerID: referrerID,
		EarnerID:   earnerID,
		Status:     enums.ReferralStatusActive,
	}
	require.NoError(t, db.Create(rel).Error)
	return rel
}

func newStore(t *testing.T, db *gorm.DB) Store {
	t.Helper()
	s, err := NewStore(gormTxRunner{db: db}, NewRepository(db))
	require.NoError(t, err)
	return s
}

func TestAwardMilestoneWritesAllRows(t *testing.T) {
	db := setupLedgerTestDB(t)
	store := newStore(t, db)
	referrerID, earnerID := uuid.New(), uuid.New()
	rel := newRelationship(t, db, referrerID, earnerID)

	result, err := store.AwardMilestone(context.Background(), AwardInput{
		ReferralID:         rel.ID,
		ReferrerID:         referrerID,
		EarnerID:           earnerID,
		SnapshotGrossCents: 51000,
		RewardCents:        2500,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(2500), result.BalanceAfterCents)
	assert.Equal(t, enums.MilestoneStatusRewarded, result.Milestone.Status)
	assert.Equal(t, int64(51000), result.Milestone.GrossTipsSnapshotCents)
	assert.Equal(t, enums.LedgerEntryTypeEarned, result.Entry.EntryType)
	assert.Equal(t, int64(2500), result.Entry.BalanceAfterCents)

	var stamped models.ReferralRelationship
	require.NoError(t, db.First(&stamped, "id = ?", rel.ID).Error)
	assert.NotNil(t, stamped.MilestoneReachedAt)

	var balance models.ReferrerBalance
	require.NoError(t, db.First(&balance, "referrer_id = ?", referrerID).Error)
	assert.Equal(t, int64(2500), balance.BalanceCents)
}

func TestAwardMilestoneTwiceConflicts(t *testing.T) {
	db := setupLedgerTestDB(t)
	store := newStore(t, db)
	referrerID, earnerID := uuid.New(), uuid.New()
	rel := newRelationship(t, db, referrerID, earnerID)

	input := AwardInput{
		ReferralID:         rel.ID,
		ReferrerID:         referrerID,
		EarnerID:           earnerID,
		SnapshotGrossCents: 51000,
		RewardCents:        2500,
	}
	_, err := store.AwardMilestone(context.Background(), input)
	require.NoError(t, err)

	_, err = store.AwardMilestone(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "duplicate award must not append a second entry")

	var balance models.ReferrerBalance
	require.NoError(t, db.First(&balance, "referrer_id = ?", referrerID).Error)
	assert.Equal(t, int64(2500), balance.BalanceCents)
}

func TestReverseMilestoneOnce(t *testing.T) {
	db := setupLedgerTestDB(t)
	store := newStore(t, db)
	referrerID, earnerID := uuid.New(), uuid.New()
	rel := newRelationship(t, db, referrerID, earnerID)

	awarded, err := store.AwardMilestone(context.Background(), AwardInput{
		ReferralID:         rel.ID,
		ReferrerID:         referrerID,
		EarnerID:           earnerID,
		SnapshotGrossCents: 51000,
		RewardCents:        2500,
	})
	require.NoError(t, err)

	reversed, err := store.ReverseMilestone(context.Background(), ReverseInput{
		MilestoneID:   awarded.Milestone.ID,
		EarnedEntryID: awarded.Entry.ID,
		Reason:        "earner status: suspended",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), reversed.BalanceAfterCents)

	var milestone models.ReferralMilestone
	require.NoError(t, db.First(&milestone, "id = ?", awarded.Milestone.ID).Error)
	assert.Equal(t, enums.MilestoneStatusReversed, milestone.Status)
	require.NotNil(t, milestone.ReversalReason)
	assert.Equal(t, "earner status: suspended", *milestone.ReversalReason)

	// second reversal is rejected: milestone already left rewarded state
	_, err = store.ReverseMilestone(context.Background(), ReverseInput{
		MilestoneID:   awarded.Milestone.ID,
		EarnedEntryID: awarded.Entry.ID,
		Reason:        "earner status: suspended",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var reversals int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Where("entry_type = ?", enums.LedgerEntryTypeReversal).
		Count(&reversals).Error)
	assert.Equal(t, int64(1), reversals)
}

func TestReverseMilestoneFloorsBalanceAtZero(t *testing.T) {
	db := setupLedgerTestDB(t)
	store := newStore(t, db)
	referrerID, earnerID := uuid.New(), uuid.New()
	rel := newRelationship(t, db, referrerID, earnerID)

	awarded, err := store.AwardMilestone(context.Background(), AwardInput{
		ReferralID:         rel.ID,
		ReferrerID:         referrerID,
		EarnerID:           earnerID,
		SnapshotGrossCents: 51000,
		RewardCents:        2500,
	})
	require.NoError(t, err)

	// drain the balance behind the ledger's back to simulate a prior payout
	require.NoError(t, db.Model(&models.ReferrerBalance{}).
		Where("referrer_id = ?", referrerID).
		Update("balance_cents", 1000).Error)

	reversed, err := store.ReverseMilestone(context.Background(), ReverseInput{
		MilestoneID:   awarded.Milestone.ID,
		EarnedEntryID: awarded.Entry.ID,
		Reason:        "retention 40% below 80% threshold",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), reversed.BalanceAfterCents)
}

func TestReverseMilestoneMissingEarnedEntry(t *testing.T) {
	db := setupLedgerTestDB(t)
	store := newStore(t, db)

	_, err := store.ReverseMilestone(context.Background(), ReverseInput{
		MilestoneID:   uuid.New(),
		EarnedEntryID: uuid.New(),
		Reason:        "abuse flags: fake_tips",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListByReferrerPaginates(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	referrerID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		entry := &models.LedgerEntry{
			ID:                uuid.New(),
			ReferrerID:        referrerID,
			EntryType:         enums.LedgerEntryTypeEarned,
			AmountCents:       2500,
			BalanceAfterCents: int64(2500 * (i + 1)),
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(entry).Error)
	}

	page, next, err := repo.ListByReferrer(context.Background(), referrerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)

	rest, _, err := repo.ListByReferrer(context.Background(), referrerID, pagination.Params{
		Limit:  2,
		Cursor: pagination.EncodeCursor(*next),
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, rest[0].CreatedAt.Before(page[1].CreatedAt) || rest[0].CreatedAt.Equal(page[1].CreatedAt))
}
