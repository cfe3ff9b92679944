package payouts

import (
	"context"
	"testing"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/config"
	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
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

func setupPayoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	earners := `
CREATE TABLE earners (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  phone TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  lifetime_gross_tips_cents INTEGER NOT NULL DEFAULT 0,
  lifetime_net_tips_cents INTEGER NOT NULL DEFAULT 0,
  lifetime_payouts_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	batches := `
CREATE TABLE payout_batches (
  id TEXT PRIMARY KEY,
  batch_number TEXT NOT NULL UNIQUE,
  period_start DATETIME NOT NULL,
  period_end DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'generating',
  earner_count INTEGER NOT NULL DEFAULT 0,
  total_amount_cents INTEGER NOT NULL DEFAULT 0,
  total_fees_cents INTEGER NOT NULL DEFAULT 0,
  total_net_cents INTEGER NOT NULL DEFAULT 0,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX idx_payout_batches_period
  ON payout_batches (period_start, period_end)
  WHERE status <> 'failed';`
	items := `
CREATE TABLE payout_batch_items (
  id TEXT PRIMARY KEY,
  batch_id TEXT,
  earner_id TEXT NOT NULL,
  item_type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  fee_cents INTEGER NOT NULL DEFAULT 0,
  net_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(earners).Error)
	require.NoError(t, db.Exec(batches).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

func newPayoutService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(db),
		Tx:   gormTxRunner{db: db},
		Payouts: config.PayoutsConfig{
			MinimumEligibilityCents: 1000,
			TransferFeeCents:        900,
		},
		Now: func() time.Time {
			return time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
		},
	})
	require.NoError(t, err)
	return svc
}

func seedEarner(t *testing.T, db *gorm.DB, netTips, payouts int64) *models.Earner {
	t.Helper()
	earner := &models.Earner{
		ID:                   uuid.New(),
		DisplayName:          "earner",
		Status:               enums.EarnerStatusActive,
		LifetimeNetTipsCents: netTips,
		LifetimePayoutsCents: payouts,
	}
	require.NoError(t, db.Create(earner).Error)
	return earner
}

func seedFeeItem(t *testing.T, db *gorm.DB, earnerID uuid.UUID, amountCents int64) *models.PayoutBatchItem {
	t.Helper()
	item := &models.PayoutBatchItem{
		ID:          uuid.New(),
		EarnerID:    earnerID,
		ItemType:    enums.PayoutItemTypeFeeDeduction,
		AmountCents: amountCents,
		NetCents:    -amountCents,
		Status:      enums.PayoutItemStatusPending,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestGenerateDeductsTransferFeeAndClaimedFees(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	earner := seedEarner(t, db, 200000, 0)
	seedFeeItem(t, db, earner.ID, 1000)
	seedFeeItem(t, db, earner.ID, 1000)

	result, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)

	assert.Equal(t, enums.PayoutBatchStatusGenerated, result.Batch.Status)
	assert.Equal(t, 1, result.Batch.EarnerCount)
	assert.Equal(t, int64(200000), result.Batch.TotalAmountCents)
	assert.Equal(t, int64(2900), result.Batch.TotalFeesCents)
	assert.Equal(t, int64(197100), result.Batch.TotalNetCents)

	require.Len(t, result.Items, 3)
	var earnerItem *models.PayoutBatchItem
	var feeRows []*models.PayoutBatchItem
	for i := range result.Items {
		switch result.Items[i].ItemType {
		case enums.PayoutItemTypeEarner:
			earnerItem = &result.Items[i]
		case enums.PayoutItemTypeFeeDeduction:
			feeRows = append(feeRows, &result.Items[i])
		}
	}
	require.NotNil(t, earnerItem)
	assert.Equal(t, int64(197100), earnerItem.NetCents)

	// both deductions summed into the net and claimed by this batch
	require.Len(t, feeRows, 2)
	for _, fee := range feeRows {
		require.NotNil(t, fee.BatchID)
		assert.Equal(t, result.Batch.ID, *fee.BatchID)
		assert.Equal(t, int64(1000), fee.AmountCents)
		assert.Equal(t, enums.PayoutItemStatusPending, fee.Status)
	}

	// export carries the earner row followed by both fee rows
	require.Len(t, result.ExportRows, 4)
	assert.Equal(t, "EARNER", result.ExportRows[1][1])
	assert.Equal(t, "FEE_DEDUCTION", result.ExportRows[2][1])
	assert.Equal(t, "FEE_DEDUCTION", result.ExportRows[3][1])
}

func TestClaimedFeeNotDeductedAgainNextPeriod(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	earner := seedEarner(t, db, 200000, 0)
	seedFeeItem(t, db, earner.ID, 2000)

	first, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(197100), first.Batch.TotalNetCents)

	// next reporting week, same earner still carries a balance
	nextStart := first.Batch.PeriodStart.AddDate(0, 0, 7)
	nextEnd := first.Batch.PeriodEnd.AddDate(0, 0, 7)
	second, err := svc.Generate(ctx, GenerateParams{PeriodStart: &nextStart, PeriodEnd: &nextEnd})
	require.NoError(t, err)

	// only the fixed transfer fee this time; the claimed fee item stays
	// attached to the first batch
	assert.Equal(t, int64(200000-900), second.Batch.TotalNetCents)

	var count int64
	require.NoError(t, db.Model(&models.PayoutBatchItem{}).
		Where("batch_id = ? AND item_type = ?", second.Batch.ID, enums.PayoutItemTypeFeeDeduction).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestDuplicatePeriodConflicts(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	seedEarner(t, db, 50000, 0)

	first, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, GenerateParams{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var items int64
	require.NoError(t, db.Model(&models.PayoutBatchItem{}).Count(&items).Error)
	assert.Equal(t, int64(1), items, "conflict run must leave no duplicate items")

	var batches int64
	require.NoError(t, db.Model(&models.PayoutBatch{}).
		Where("status <> ?", enums.PayoutBatchStatusFailed).
		Count(&batches).Error)
	assert.Equal(t, int64(1), batches)
	assert.Equal(t, enums.PayoutBatchStatusGenerated, first.Batch.Status)
}

func TestForceSupersedesExistingBatch(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	earner := seedEarner(t, db, 50000, 0)
	fee := seedFeeItem(t, db, earner.ID, 2000)

	first, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)

	// identical bounds: the forced run must retire the first batch and
	// succeed despite the period unique index
	start := first.Batch.PeriodStart
	end := first.Batch.PeriodEnd
	second, err := svc.Generate(ctx, GenerateParams{PeriodStart: &start, PeriodEnd: &end, Force: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.Batch.ID, second.Batch.ID)
	assert.Equal(t, enums.PayoutBatchStatusGenerated, second.Batch.Status)

	var superseded models.PayoutBatch
	require.NoError(t, db.Where("id = ?", first.Batch.ID).First(&superseded).Error)
	assert.Equal(t, enums.PayoutBatchStatusFailed, superseded.Status)
	require.NotNil(t, superseded.FailureReason)
	assert.Contains(t, *superseded.FailureReason, "superseded")

	// the fee deduction moved from the retired batch to its replacement
	var reloaded models.PayoutBatchItem
	require.NoError(t, db.Where("id = ?", fee.ID).First(&reloaded).Error)
	require.NotNil(t, reloaded.BatchID)
	assert.Equal(t, second.Batch.ID, *reloaded.BatchID)
	assert.Equal(t, int64(50000-900-2000), second.Batch.TotalNetCents)
}

func TestFeesConsumingBalanceExcludeEarnerAndRollForward(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	// balance 2500, transfer fee 900, pending fees 2000 -> net -400
	excluded := seedEarner(t, db, 2500, 0)
	fee := seedFeeItem(t, db, excluded.ID, 2000)
	included := seedEarner(t, db, 100000, 0)

	result, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Batch.EarnerCount)
	require.Len(t, result.Items, 1)
	assert.Equal(t, included.ID, result.Items[0].EarnerID)

	// the excluded earner's fee item is still unclaimed for the next run
	var reloaded models.PayoutBatchItem
	require.NoError(t, db.Where("id = ?", fee.ID).First(&reloaded).Error)
	assert.Nil(t, reloaded.BatchID)
	assert.Equal(t, enums.PayoutItemStatusPending, reloaded.Status)
}

func TestBelowMinimumAndInactiveEarnersExcluded(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	seedEarner(t, db, 500, 0) // below the 1000 minimum
	suspended := seedEarner(t, db, 80000, 0)
	require.NoError(t, db.Model(&models.Earner{}).
		Where("id = ?", suspended.ID).
		Update("status", enums.EarnerStatusSuspended).Error)
	seedEarner(t, db, 80000, 79500) // unpaid balance 500

	result, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)

	assert.Zero(t, result.Batch.EarnerCount)
	assert.Empty(t, result.Items)
}

func TestExportRowsGroupEarnerThenFees(t *testing.T) {
	batchID := uuid.New()
	earnerA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	earnerB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	items := []models.PayoutBatchItem{
		{ID: uuid.New(), BatchID: &batchID, EarnerID: earnerB, ItemType: enums.PayoutItemTypeFeeDeduction, AmountCents: 2000, NetCents: -2000, Status: enums.PayoutItemStatusPending},
		{ID: uuid.New(), BatchID: &batchID, EarnerID: earnerB, ItemType: enums.PayoutItemTypeEarner, AmountCents: 50000, FeeCents: 900, NetCents: 47100, Status: enums.PayoutItemStatusPending},
		{ID: uuid.New(), BatchID: &batchID, EarnerID: earnerA, ItemType: enums.PayoutItemTypeEarner, AmountCents: 10000, FeeCents: 900, NetCents: 9100, Status: enums.PayoutItemStatusPending},
	}

	rows := BuildExportRows(items)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeader, rows[0])

	assert.Equal(t, earnerA.String(), rows[1][0])
	assert.Equal(t, "EARNER", rows[1][1])
	assert.Equal(t, earnerB.String(), rows[2][0])
	assert.Equal(t, "EARNER", rows[2][1])
	assert.Equal(t, earnerB.String(), rows[3][0])
	assert.Equal(t, "FEE_DEDUCTION", rows[3][1])
	assert.Equal(t, "2000", rows[3][2])
}

func TestGetBatchReturnsItemsAndExport(t *testing.T) {
	db := setupPayoutTestDB(t)
	svc := newPayoutService(t, db)
	ctx := context.Background()

	seedEarner(t, db, 60000, 0)
	generated, err := svc.Generate(ctx, GenerateParams{})
	require.NoError(t, err)

	loaded, err := svc.GetBatch(ctx, generated.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, generated.Batch.BatchNumber, loaded.Batch.BatchNumber)
	assert.Len(t, loaded.Items, 1)
	assert.Len(t, loaded.ExportRows, 2)

	_, err = svc.GetBatch(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
