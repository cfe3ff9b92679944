package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/aldomartell/tipply-backend/pkg/db/models"
	"github.com/aldomartell/tipply-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for payout batches and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindActiveBatchByPeriod(ctx context.Context, start, end time.Time) (*models.PayoutBatch, error)
	CreateBatch(ctx context.Context, batch *models.PayoutBatch) error
	UpdateBatch(ctx context.Context, batch *models.PayoutBatch) error
	MarkBatchFailed(ctx context.Context, batchID uuid.UUID, reason string) error
	GetBatch(ctx context.Context, batchID uuid.UUID) (*models.PayoutBatch, error)

	EligibleEarners(ctx context.Context, minimumCents int64) ([]models.Earner, error)
	PendingFeeItems(ctx context.Context, earnerIDs []uuid.UUID) ([]models.PayoutBatchItem, error)
	ClaimFeeItems(ctx context.Context, batchID uuid.UUID, earnerIDs []uuid.UUID) (int64, error)
	ReleaseFeeItems(ctx context.Context, batchID uuid.UUID) (int64, error)
	CreateItems(ctx context.Context, items []*models.PayoutBatchItem) error
	ListItemsByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayoutBatchItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveBatchByPeriod(ctx context.Context, start, end time.Time) (*models.PayoutBatch, error) {
	var batch models.PayoutBatch
	err := r.db.WithContext(ctx).
		Where("period_start = ? AND period_end = ? AND status <> ?", start, end, enums.PayoutBatchStatusFailed).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *repository) CreateBatch(ctx context.Context, batch *models.PayoutBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *repository) UpdateBatch(ctx context.Context, batch *models.PayoutBatch) error {
	return r.db.WithContext(ctx).
		Model(&models.PayoutBatch{}).
		Where("id = ?", batch.ID).
		Updates(map[string]any{
			"status":             batch.Status,
			"earner_count":       batch.EarnerCount,
			"total_amount_cents": batch.TotalAmountCents,
			"total_fees_cents":   batch.TotalFeesCents,
			"total_net_cents":    batch.TotalNetCents,
			"updated_at":         time.Now().UTC(),
		}).Error
}

func (r *repository) MarkBatchFailed(ctx context.Context, batchID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.PayoutBatch{}).
		Where("id = ?", batchID).
		Updates(map[string]any{
			"status":         enums.PayoutBatchStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *repository) GetBatch(ctx context.Context, batchID uuid.UUID) (*models.PayoutBatch, error) {
	var batch models.PayoutBatch
	err := r.db.WithContext(ctx).
		Where("id = ?", batchID).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

func (r *repository) EligibleEarners(ctx context.Context, minimumCents int64) ([]models.Earner, error) {
	var earners []models.Earner
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.EarnerStatusActive).
		Where("lifetime_net_tips_cents - lifetime_payouts_cents >= ?", minimumCents).
		Order("id ASC").
		Find(&earners).Error
	if err != nil {
		return nil, err
	}
	return earners, nil
}

func (r *repository) PendingFeeItems(ctx context.Context, earnerIDs []uuid.UUID) ([]models.PayoutBatchItem, error) {
	if len(earnerIDs) == 0 {
		return nil, nil
	}
	var items []models.PayoutBatchItem
	err := r.db.WithContext(ctx).
		Where("item_type = ?", enums.PayoutItemTypeFeeDeduction).
		Where("status = ?", enums.PayoutItemStatusPending).
		Where("batch_id IS NULL").
		Where("earner_id IN ?", earnerIDs).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ClaimFeeItems points every unclaimed pending fee item of the given earners
// at the batch. The batch_id IS NULL guard keeps an item from ever being
// claimed twice, even across concurrent runs.
func (r *repository) ClaimFeeItems(ctx context.Context, batchID uuid.UUID, earnerIDs []uuid.UUID) (int64, error) {
	if len(earnerIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.PayoutBatchItem{}).
		Where("item_type = ?", enums.PayoutItemTypeFeeDeduction).
		Where("status = ?", enums.PayoutItemStatusPending).
		Where("batch_id IS NULL").
		Where("earner_id IN ?", earnerIDs).
		Updates(map[string]any{
			"batch_id":   batchID,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// ReleaseFeeItems un-claims the pending fee deductions held by a batch so a
// replacement run can claim them again. Items already past pending stay put.
func (r *repository) ReleaseFeeItems(ctx context.Context, batchID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutBatchItem{}).
		Where("item_type = ?", enums.PayoutItemTypeFeeDeduction).
		Where("status = ?", enums.PayoutItemStatusPending).
		Where("batch_id = ?", batchID).
		Updates(map[string]any{
			"batch_id":   nil,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) CreateItems(ctx context.Context, items []*models.PayoutBatchItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(items).Error
}

func (r *repository) ListItemsByBatch(ctx context.Context, batchID uuid.UUID) ([]models.PayoutBatchItem, error) {
	var items []models.PayoutBatchItem
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("earner_id ASC, item_type ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
